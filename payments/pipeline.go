// Package payments drives the order lifecycle: cart submission, invoice
// issuance, pre-checkout validation, and idempotent payment capture.
package payments

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
	"github.com/cozn1l/gorosso/metrics"
)

// Ledger is the pending-order reservation store.
type Ledger interface {
	Reserve(ctx context.Context, pending domain.PendingOrder) error
	Peek(ctx context.Context, payload string) (domain.PendingOrder, error)
}

// OrderWriter persists captured orders. CaptureFromPayload consumes the
// reservation and writes the order atomically: a failed write must leave
// the reservation in place. NotFound means no reservation holds the payload.
type OrderWriter interface {
	CaptureFromPayload(ctx context.Context, payload, receipt string) (domain.Order, error)
	OrderByPayload(ctx context.Context, payload string) (domain.Order, bool, error)
}

// Invoice is what the pipeline asks the transport layer to present.
type Invoice struct {
	UserID      int64
	Title       string
	Description string
	Currency    string
	Payload     string
	Lines       []InvoiceLine
}

// InvoiceLine is one labeled amount on the invoice.
type InvoiceLine struct {
	Label  string
	Amount int64
}

// InvoiceIssuer presents an invoice to the buyer. Pre-checkout and payment
// confirmations arrive later as separate inbound events.
type InvoiceIssuer interface {
	Issue(ctx context.Context, inv Invoice) error
}

// PreCheckout is the provider's validation query before charging.
type PreCheckout struct {
	Payload string
	Amount  int64
}

// Confirmation is the provider's successful-payment event.
type Confirmation struct {
	Payload string
	UserID  int64
	Receipt string
}

// CaptureResult reports the outcome of a confirmation.
type CaptureResult struct {
	Order domain.Order
	// Duplicate is set when the confirmation had already been handled; the
	// Order then refers to the previously captured one.
	Duplicate bool
}

// Pipeline wires the ledger, the order writer, and the invoice issuer.
type Pipeline struct {
	ledger   Ledger
	orders   OrderWriter
	issuer   InvoiceIssuer
	currency string
	title    string
	metrics  *metrics.Shop
}

// NewPipeline constructs the pipeline. metrics may be nil.
func NewPipeline(ledger Ledger, orders OrderWriter, issuer InvoiceIssuer, currency, title string, m *metrics.Shop) *Pipeline {
	return &Pipeline{
		ledger:   ledger,
		orders:   orders,
		issuer:   issuer,
		currency: currency,
		title:    title,
		metrics:  m,
	}
}

// SubmitCart turns a non-empty cart into a reserved invoice presented to the
// buyer. Returns the reserved payload and the invoice total.
func (p *Pipeline) SubmitCart(ctx context.Context, userID int64, cart domain.Cart) (string, int64, error) {
	const op = "payments.submit_cart"
	if len(cart) == 0 {
		return "", 0, domain.E(domain.KindEmptyCart, op, "cart has no lines")
	}

	total := cart.Total()
	payload := uuid.NewString()
	pending := domain.PendingOrder{
		Payload: payload,
		UserID:  userID,
		Amount:  total,
		Cart:    cart,
	}
	if err := p.ledger.Reserve(ctx, pending); err != nil {
		return "", 0, err
	}

	lines := make([]InvoiceLine, 0, len(cart))
	for _, l := range cart.Lines() {
		label := l.Item.Name
		if l.Item.Size != "" && l.Item.Size != "--" {
			label += " " + l.Item.Size
		}
		if l.Item.Color != "" && l.Item.Color != "--" {
			label += " " + l.Item.Color
		}
		if l.Qty > 1 {
			label += " x" + strconv.Itoa(l.Qty)
		}
		lines = append(lines, InvoiceLine{Label: label, Amount: l.Subtotal()})
	}

	inv := Invoice{
		UserID:      userID,
		Title:       p.title,
		Description: "Order of " + strconv.Itoa(len(lines)) + " item(s)",
		Currency:    p.currency,
		Payload:     payload,
		Lines:       lines,
	}
	if err := p.issuer.Issue(ctx, inv); err != nil {
		return "", 0, domain.Wrap(domain.KindInternal, op, err)
	}

	p.metrics.IncInvoiceIssued()
	logger.SVCPayments.Info("invoice issued",
		slog.String("event", "payments.invoice"),
		slog.Int64("user_id", userID),
		slog.Int64("total_amount", total),
		slog.Int("lines", len(lines)),
		slog.String("payload", payload),
	)
	return payload, total, nil
}

// PreCheckout validates a provider pre-checkout query against the ledger.
// A nil return means approve; coded errors mean answer negatively.
func (p *Pipeline) PreCheckout(ctx context.Context, q PreCheckout) error {
	const op = "payments.precheckout"
	pending, err := p.ledger.Peek(ctx, q.Payload)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			p.metrics.IncPrecheckoutRejected("unknown_payload")
			return domain.E(domain.KindUnknownPayload, op, "no reservation for payload")
		}
		return err
	}
	if pending.Amount != q.Amount {
		p.metrics.IncPrecheckoutRejected("amount_mismatch")
		return domain.Ef(domain.KindAmountMismatch, op,
			"reserved %d, provider sent %d", pending.Amount, q.Amount)
	}
	logger.SVCPayments.Debug("precheckout approved",
		slog.String("event", "payments.precheckout"),
		slog.Int64("amount", q.Amount),
		slog.String("payload", q.Payload),
	)
	return nil
}

// Capture consumes the reservation and durably records the order in one
// transaction, so a failed order write keeps the reservation and a
// redelivered confirmation can retry. Duplicate confirmations (reservation
// already consumed, order row exists) return the existing order with
// Duplicate set and no side effects.
func (p *Pipeline) Capture(ctx context.Context, conf Confirmation) (CaptureResult, error) {
	const op = "payments.capture"

	order, err := p.orders.CaptureFromPayload(ctx, conf.Payload, conf.Receipt)
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			return CaptureResult{}, err
		}
		existing, found, lookupErr := p.orders.OrderByPayload(ctx, conf.Payload)
		if lookupErr != nil {
			return CaptureResult{}, lookupErr
		}
		if found {
			p.metrics.IncPaymentDuplicate()
			logger.SVCPayments.Warn("duplicate confirmation swallowed",
				slog.String("event", "payments.capture"),
				slog.String("status", "skip"),
				slog.String("order_number", existing.OrderNumber),
				slog.String("payload", conf.Payload),
			)
			return CaptureResult{Order: existing, Duplicate: true}, nil
		}
		return CaptureResult{}, domain.E(domain.KindUnknownPayload, op, "confirmation for unknown payload")
	}
	p.metrics.IncPaymentCaptured()
	logger.SVCPayments.Info("payment captured",
		slog.String("event", "payments.capture"),
		slog.String("order_number", order.OrderNumber),
		slog.Int64("user_id", order.UserID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.String("payload", conf.Payload),
	)
	return CaptureResult{Order: order}, nil
}
