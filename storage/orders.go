package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cozn1l/gorosso/core/logger"
	"github.com/cozn1l/gorosso/domain"
)

const orderNumberPrefix = "GRS"

// FormatOrderNumber renders GRS-YYYYMMDD-NNNN for the given day and 1-based
// sequence.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", orderNumberPrefix, day.Format("20060102"), seq)
}

// OrderNumberSeq extracts the per-day sequence from an order number, or 0 if
// the number is malformed.
func OrderNumberSeq(number string) int {
	i := strings.LastIndexByte(number, '-')
	if i < 0 {
		return 0
	}
	seq, err := strconv.Atoi(number[i+1:])
	if err != nil || seq < 0 {
		return 0
	}
	return seq
}

func orderDayPattern(day time.Time) string {
	return orderNumberPrefix + "-" + day.Format("20060102") + "-%"
}

// CaptureFromPayload consumes the reservation and persists the order, its
// items, and the stock decrements in one transaction. Items derive from the
// reservation's cart snapshot, not from current catalog rows. Stock is
// clamped at zero. A failed order write rolls the consume back, so the
// reservation survives for a redelivered confirmation. NotFound means no
// reservation holds the payload.
func (s *Store) CaptureFromPayload(ctx context.Context, payload, receipt string) (domain.Order, error) {
	const op = "orders.capture"
	start := time.Now()

	var order domain.Order
	var err error
	// Concurrent captures can race the per-day sequence; the unique index on
	// order_number catches the loser and we re-allocate.
	for attempt := 1; attempt <= 3; attempt++ {
		err = s.inTx(ctx, func(tx *sqlx.Tx) error {
			pending, txErr := consumePending(ctx, tx, payload)
			if txErr != nil {
				return txErr
			}
			o, txErr := s.insertOrder(ctx, tx, pending, receipt)
			if txErr != nil {
				return txErr
			}
			order = o
			return nil
		})
		if err == nil || !isUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return domain.Order{}, err
		}
		return domain.Order{}, domain.Wrap(domain.KindInternal, op, err)
	}

	logger.SVCOrders.Info("order captured",
		slog.String("event", "orders.create"),
		slog.String("order_number", order.OrderNumber),
		slog.Int64("user_id", order.UserID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("lines", len(order.Items)),
		slog.Duration("duration", logger.Took(start)),
	)
	return order, nil
}

func (s *Store) insertOrder(ctx context.Context, tx *sqlx.Tx, pending domain.PendingOrder, receipt string) (domain.Order, error) {
	day := time.Now()

	var last string
	seq := 1
	// Longer numbers sort before shorter ones so a 5-digit sequence still
	// beats 9999 despite the text column.
	err := tx.GetContext(ctx, &last,
		`SELECT order_number FROM orders
		  WHERE order_number LIKE $1
		  ORDER BY length(order_number) DESC, order_number DESC LIMIT 1
		    FOR UPDATE`, orderDayPattern(day))
	switch {
	case err == nil:
		seq = OrderNumberSeq(last) + 1
	case isNoRows(err):
		// first order of the day
	default:
		return domain.Order{}, err
	}

	order := domain.Order{
		OrderNumber: FormatOrderNumber(day, seq),
		UserID:      pending.UserID,
		Payload:     pending.Payload,
		TotalAmount: pending.Cart.Total(),
		Status:      domain.OrderStatusPaid,
		PaymentInfo: receipt,
	}
	err = tx.GetContext(ctx, &order.ID,
		`INSERT INTO orders (order_number, user_id, payload, total_amount, status, payment_info, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now())
		 RETURNING id`,
		order.OrderNumber, order.UserID, order.Payload, order.TotalAmount, order.Status, order.PaymentInfo)
	if err != nil {
		return domain.Order{}, err
	}

	for _, line := range pending.Cart.Lines() {
		item := domain.OrderItem{
			OrderID:   order.ID,
			ProductID: line.Item.ProductID,
			Name:      line.Item.Name,
			Size:      line.Item.Size,
			Color:     line.Item.Color,
			UnitPrice: line.Item.Price,
			Qty:       line.Qty,
		}
		err = tx.GetContext(ctx, &item.ID,
			`INSERT INTO order_items (order_id, product_id, name, size, color, unit_price, qty)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			item.OrderID, item.ProductID, item.Name, item.Size, item.Color, item.UnitPrice, item.Qty)
		if err != nil {
			return domain.Order{}, err
		}
		order.Items = append(order.Items, item)

		if _, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = GREATEST(stock - $1, 0) WHERE id = $2`,
			line.Qty, line.Item.ProductID); err != nil {
			return domain.Order{}, err
		}
	}
	return order, nil
}

// OrderByPayload fetches the order created from the given payload, if any.
// Capture uses it to recognize duplicate payment confirmations.
func (s *Store) OrderByPayload(ctx context.Context, payload string) (domain.Order, bool, error) {
	const op = "orders.by_payload"
	var order domain.Order
	err := s.db.GetContext(ctx, &order,
		`SELECT id, order_number, user_id, payload, total_amount, status, payment_info, created_at
		   FROM orders WHERE payload = $1`, payload)
	if err != nil {
		if isNoRows(err) {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, domain.Wrap(domain.KindInternal, op, err)
	}
	return order, true, nil
}

// ListOrdersByUser returns a user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const op = "orders.list_by_user"
	var orders []domain.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT id, order_number, user_id, payload, total_amount, status, payment_info, created_at
		   FROM orders WHERE user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, op, err)
	}
	return orders, nil
}
