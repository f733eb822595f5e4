package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/cozn1l/gorosso/domain"
)

// pgStore connects to TEST_DATABASE_URL, applies the migrations, and starts
// from empty shop tables. Tests needing it skip when the variable is unset.
func pgStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	m, err := migrate.New("file://../migrations", dsn)
	if err != nil {
		t.Fatalf("migrate init: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(
		`TRUNCATE order_items, orders, pending_orders, products, categories RESTART IDENTITY CASCADE`,
	); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return New(db)
}

func singleLineCart(productID int64, name string, price int64, qty int) domain.Cart {
	return domain.Cart{
		"line": {
			Item: domain.CartItem{ProductID: productID, Name: name, Price: price},
			Qty:  qty,
		},
	}
}

func reserveAndCapture(t *testing.T, s *Store, payload string, cart domain.Cart) domain.Order {
	t.Helper()
	ctx := context.Background()
	err := s.Reserve(ctx, domain.PendingOrder{
		Payload: payload,
		UserID:  42,
		Amount:  cart.Total(),
		Cart:    cart,
	})
	if err != nil {
		t.Fatalf("Reserve(%s): %v", payload, err)
	}
	order, err := s.CaptureFromPayload(ctx, payload, "rcpt")
	if err != nil {
		t.Fatalf("CaptureFromPayload(%s): %v", payload, err)
	}
	return order
}

func TestDeleteCategoryWithProductsPG(t *testing.T) {
	s := pgStore(t)
	ctx := context.Background()

	cat, err := s.EnsureCategory(ctx, "Streetwear")
	if err != nil {
		t.Fatalf("EnsureCategory: %v", err)
	}
	p, err := s.CreateProduct(ctx, domain.Product{Name: "Hoodie", CategoryID: cat.ID, Price: 75000})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	err = s.DeleteCategory(ctx, cat.ID)
	if !domain.IsKind(err, domain.KindConstraintViolation) {
		t.Fatalf("want CONSTRAINT_VIOLATION, got %v", err)
	}
	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("category gone after rejected delete: %v, %v", cats, err)
	}

	// Once the products are gone the delete goes through.
	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := s.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory after emptying: %v", err)
	}
}

func TestCaptureClampsStockPG(t *testing.T) {
	s := pgStore(t)
	ctx := context.Background()

	cat, err := s.EnsureCategory(ctx, "Streetwear")
	if err != nil {
		t.Fatalf("EnsureCategory: %v", err)
	}
	p, err := s.CreateProduct(ctx, domain.Product{Name: "Hoodie", CategoryID: cat.ID, Price: 50000, Stock: 1})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	order := reserveAndCapture(t, s, "pay-clamp", singleLineCart(p.ID, p.Name, p.Price, 3))
	if order.TotalAmount != 150000 {
		t.Fatalf("total = %d, want 150000", order.TotalAmount)
	}
	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("stock = %d, want 0 after oversell", got.Stock)
	}

	// The reservation was consumed in the same transaction.
	if _, err := s.Peek(ctx, "pay-clamp"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("want NOT_FOUND peeking consumed reservation, got %v", err)
	}
}

func TestOrderNumberAllocationPG(t *testing.T) {
	s := pgStore(t)
	day := time.Now()

	first := reserveAndCapture(t, s, "pay-1", singleLineCart(1, "Hoodie", 50000, 1))
	if want := FormatOrderNumber(day, 1); first.OrderNumber != want {
		t.Fatalf("first order number = %q, want %q", first.OrderNumber, want)
	}
	second := reserveAndCapture(t, s, "pay-2", singleLineCart(1, "Hoodie", 50000, 1))
	if want := FormatOrderNumber(day, 2); second.OrderNumber != want {
		t.Fatalf("second order number = %q, want %q", second.OrderNumber, want)
	}

	// Allocation keeps counting past four digits.
	if _, err := s.db.Exec(
		`INSERT INTO orders (order_number, user_id, payload, total_amount)
		 VALUES ($1, 42, 'seed-9999', 0), ($2, 42, 'seed-10000', 0)`,
		FormatOrderNumber(day, 9999), FormatOrderNumber(day, 10000),
	); err != nil {
		t.Fatalf("seed orders: %v", err)
	}
	busy := reserveAndCapture(t, s, "pay-3", singleLineCart(1, "Hoodie", 50000, 1))
	if want := FormatOrderNumber(day, 10001); busy.OrderNumber != want {
		t.Fatalf("order number after 10000 = %q, want %q", busy.OrderNumber, want)
	}
}

func TestZeroTotalCartPG(t *testing.T) {
	s := pgStore(t)

	order := reserveAndCapture(t, s, "pay-free", singleLineCart(1, "Sticker", 0, 1))
	if order.TotalAmount != 0 {
		t.Fatalf("total = %d, want 0", order.TotalAmount)
	}
	if order.Status != domain.OrderStatusPaid {
		t.Fatalf("status = %q", order.Status)
	}
}
