package payments

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/cozn1l/gorosso/domain"
)

type fakeLedger struct {
	reserved map[string]domain.PendingOrder
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{reserved: make(map[string]domain.PendingOrder)}
}

func (f *fakeLedger) Reserve(_ context.Context, p domain.PendingOrder) error {
	if _, ok := f.reserved[p.Payload]; ok {
		return domain.E(domain.KindDuplicatePayload, "fake.reserve", "payload already reserved")
	}
	f.reserved[p.Payload] = p
	return nil
}

func (f *fakeLedger) Peek(_ context.Context, payload string) (domain.PendingOrder, error) {
	p, ok := f.reserved[payload]
	if !ok {
		return domain.PendingOrder{}, domain.E(domain.KindNotFound, "fake.peek", "no reservation")
	}
	return p, nil
}

// fakeOrders consumes reservations from its ledger and writes the order in
// one step, the way the transactional store does. failWrites injects order
// write failures that leave the reservation untouched.
type fakeOrders struct {
	ledger     *fakeLedger
	byPayload  map[string]domain.Order
	nextID     int64
	failWrites int
}

func newFakeOrders(ledger *fakeLedger) *fakeOrders {
	return &fakeOrders{ledger: ledger, byPayload: make(map[string]domain.Order)}
}

func (f *fakeOrders) CaptureFromPayload(_ context.Context, payload, receipt string) (domain.Order, error) {
	p, ok := f.ledger.reserved[payload]
	if !ok {
		return domain.Order{}, domain.E(domain.KindNotFound, "fake.capture", "no reservation")
	}
	if f.failWrites > 0 {
		f.failWrites--
		return domain.Order{}, domain.E(domain.KindInternal, "fake.capture", "order write failed")
	}
	delete(f.ledger.reserved, payload)
	f.nextID++
	o := domain.Order{
		ID:          f.nextID,
		OrderNumber: "GRS-20260827-" + strconv.FormatInt(f.nextID, 10),
		UserID:      p.UserID,
		Payload:     p.Payload,
		TotalAmount: p.Amount,
		Status:      domain.OrderStatusPaid,
		PaymentInfo: receipt,
	}
	f.byPayload[payload] = o
	return o, nil
}

func (f *fakeOrders) OrderByPayload(_ context.Context, payload string) (domain.Order, bool, error) {
	o, ok := f.byPayload[payload]
	return o, ok, nil
}

type fakeIssuer struct {
	issued []Invoice
	err    error
}

func (f *fakeIssuer) Issue(_ context.Context, inv Invoice) error {
	if f.err != nil {
		return f.err
	}
	f.issued = append(f.issued, inv)
	return nil
}

func testCart() domain.Cart {
	return domain.Cart{
		"3_M_Black": {
			Item: domain.CartItem{ProductID: 3, Name: "Hoodie", Price: 75000, Size: "M", Color: "Black"},
			Qty:  2,
		},
		"7_--_--": {
			Item: domain.CartItem{ProductID: 7, Name: "Cap", Price: 20000, Size: "--", Color: "--"},
			Qty:  1,
		},
	}
}

func newTestPipeline(ledger Ledger, orders OrderWriter, issuer InvoiceIssuer) *Pipeline {
	return NewPipeline(ledger, orders, issuer, "RUB", "Gorosso", nil)
}

func TestSubmitCartEmpty(t *testing.T) {
	ledger := newFakeLedger()
	p := newTestPipeline(ledger, newFakeOrders(ledger), &fakeIssuer{})
	_, _, err := p.SubmitCart(context.Background(), 42, domain.Cart{})
	if !domain.IsKind(err, domain.KindEmptyCart) {
		t.Fatalf("want EMPTY_CART, got %v", err)
	}
}

func TestSubmitCartReservesAndIssues(t *testing.T) {
	ledger := newFakeLedger()
	issuer := &fakeIssuer{}
	p := newTestPipeline(ledger, newFakeOrders(ledger), issuer)

	payload, total, err := p.SubmitCart(context.Background(), 42, testCart())
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}
	if want := int64(2*75000 + 20000); total != want {
		t.Fatalf("total = %d, want %d", total, want)
	}
	if payload == "" {
		t.Fatal("payload is empty")
	}

	pending, ok := ledger.reserved[payload]
	if !ok {
		t.Fatal("reservation not recorded")
	}
	if pending.Amount != total || pending.UserID != 42 {
		t.Fatalf("reservation = %+v", pending)
	}
	if len(pending.Cart) != 2 {
		t.Fatalf("cart snapshot has %d lines, want 2", len(pending.Cart))
	}

	if len(issuer.issued) != 1 {
		t.Fatalf("issued %d invoices, want 1", len(issuer.issued))
	}
	inv := issuer.issued[0]
	if inv.Payload != payload || inv.Currency != "RUB" || inv.UserID != 42 {
		t.Fatalf("invoice = %+v", inv)
	}
	var sum int64
	for _, l := range inv.Lines {
		sum += l.Amount
	}
	if sum != total {
		t.Fatalf("invoice lines sum = %d, want %d", sum, total)
	}
}

func TestSubmitCartIssuerFailure(t *testing.T) {
	issuer := &fakeIssuer{err: errors.New("telegram down")}
	ledger := newFakeLedger()
	p := newTestPipeline(ledger, newFakeOrders(ledger), issuer)
	_, _, err := p.SubmitCart(context.Background(), 42, testCart())
	if !domain.IsKind(err, domain.KindInternal) {
		t.Fatalf("want INTERNAL, got %v", err)
	}
}

func TestPreCheckout(t *testing.T) {
	ledger := newFakeLedger()
	p := newTestPipeline(ledger, newFakeOrders(ledger), &fakeIssuer{})
	payload, total, err := p.SubmitCart(context.Background(), 42, testCart())
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}

	if err := p.PreCheckout(context.Background(), PreCheckout{Payload: payload, Amount: total}); err != nil {
		t.Fatalf("matching precheckout rejected: %v", err)
	}
	err = p.PreCheckout(context.Background(), PreCheckout{Payload: payload, Amount: total + 1})
	if !domain.IsKind(err, domain.KindAmountMismatch) {
		t.Fatalf("want AMOUNT_MISMATCH, got %v", err)
	}
	err = p.PreCheckout(context.Background(), PreCheckout{Payload: "nope", Amount: total})
	if !domain.IsKind(err, domain.KindUnknownPayload) {
		t.Fatalf("want UNKNOWN_PAYLOAD, got %v", err)
	}
}

func TestCaptureCreatesOrderOnce(t *testing.T) {
	ledger := newFakeLedger()
	orders := newFakeOrders(ledger)
	p := newTestPipeline(ledger, orders, &fakeIssuer{})
	payload, total, err := p.SubmitCart(context.Background(), 42, testCart())
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}

	res, err := p.Capture(context.Background(), Confirmation{Payload: payload, UserID: 42, Receipt: "rcpt-1"})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if res.Duplicate {
		t.Fatal("first capture flagged duplicate")
	}
	if res.Order.TotalAmount != total || res.Order.Status != domain.OrderStatusPaid {
		t.Fatalf("order = %+v", res.Order)
	}
	if _, ok := ledger.reserved[payload]; ok {
		t.Fatal("reservation not consumed")
	}

	// A redelivered confirmation must not create a second order.
	again, err := p.Capture(context.Background(), Confirmation{Payload: payload, UserID: 42, Receipt: "rcpt-1"})
	if err != nil {
		t.Fatalf("duplicate Capture: %v", err)
	}
	if !again.Duplicate {
		t.Fatal("redelivery not flagged duplicate")
	}
	if again.Order.OrderNumber != res.Order.OrderNumber {
		t.Fatalf("duplicate returned %q, want %q", again.Order.OrderNumber, res.Order.OrderNumber)
	}
	if orders.nextID != 1 {
		t.Fatalf("created %d orders, want 1", orders.nextID)
	}
}

func TestCaptureUnknownPayload(t *testing.T) {
	ledger := newFakeLedger()
	p := newTestPipeline(ledger, newFakeOrders(ledger), &fakeIssuer{})
	_, err := p.Capture(context.Background(), Confirmation{Payload: "ghost"})
	if !domain.IsKind(err, domain.KindUnknownPayload) {
		t.Fatalf("want UNKNOWN_PAYLOAD, got %v", err)
	}
}

func TestCaptureRetriesAfterFailedOrderWrite(t *testing.T) {
	ledger := newFakeLedger()
	orders := newFakeOrders(ledger)
	orders.failWrites = 1
	p := newTestPipeline(ledger, orders, &fakeIssuer{})
	payload, total, err := p.SubmitCart(context.Background(), 42, testCart())
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}

	_, err = p.Capture(context.Background(), Confirmation{Payload: payload, UserID: 42, Receipt: "rcpt-1"})
	if !domain.IsKind(err, domain.KindInternal) {
		t.Fatalf("want INTERNAL from failed write, got %v", err)
	}
	if _, ok := ledger.reserved[payload]; !ok {
		t.Fatal("reservation lost on failed order write")
	}

	// The provider redelivers the confirmation; capture must now succeed.
	res, err := p.Capture(context.Background(), Confirmation{Payload: payload, UserID: 42, Receipt: "rcpt-1"})
	if err != nil {
		t.Fatalf("redelivered Capture: %v", err)
	}
	if res.Duplicate {
		t.Fatal("retry flagged duplicate")
	}
	if res.Order.TotalAmount != total {
		t.Fatalf("order total = %d, want %d", res.Order.TotalAmount, total)
	}
}
