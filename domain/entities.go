package domain

import (
	"strings"
	"time"
)

// Category groups products for the storefront.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Product is a catalog entry. Prices are integer minor currency units.
// Sizes and colors are stored comma-joined and expanded at the boundary.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	CategoryID  int64     `db:"category_id" json:"category_id"`
	Price       int64     `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Sizes       string    `db:"sizes" json:"-"`
	Colors      string    `db:"colors" json:"-"`
	Photo       string    `db:"photo" json:"photo"`
	Stock       int64     `db:"stock" json:"stock"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// SizeList expands the stored sizes into an ordered list.
func (p Product) SizeList() []string { return SplitList(p.Sizes) }

// ColorList expands the stored colors into an ordered list.
func (p Product) ColorList() []string { return SplitList(p.Colors) }

// ProductRow is a product joined with its category name for admin listings.
type ProductRow struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Category string `db:"category"`
	Price    int64  `db:"price"`
	Stock    int64  `db:"stock"`
}

// PendingOrder is a single-use payment reservation between invoice issuance
// and payment confirmation. The cart snapshot is persisted so capture works
// across the asynchronous gap and process restarts.
type PendingOrder struct {
	Payload   string    `db:"payload"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Cart      Cart      `db:"cart"`
	CreatedAt time.Time `db:"created_at"`
}

// Order is a durably captured purchase. Immutable once created.
type Order struct {
	ID          int64     `db:"id"`
	OrderNumber string    `db:"order_number"`
	UserID      int64     `db:"user_id"`
	Payload     string    `db:"payload"`
	TotalAmount int64     `db:"total_amount"`
	Status      string    `db:"status"`
	PaymentInfo string    `db:"payment_info"`
	CreatedAt   time.Time `db:"created_at"`

	Items []OrderItem `db:"-"`
}

// OrderStatusPaid is the only status orders are created with; the column
// exists so refund/fulfilment states can be added without a migration.
const OrderStatusPaid = "paid"

// OrderItem is a purchased line with the unit price snapshotted at capture.
type OrderItem struct {
	ID        int64  `db:"id"`
	OrderID   int64  `db:"order_id"`
	ProductID int64  `db:"product_id"`
	Name      string `db:"name"`
	Size      string `db:"size"`
	Color     string `db:"color"`
	UnitPrice int64  `db:"unit_price"`
	Qty       int    `db:"qty"`
}

// SplitList expands a comma-joined string into an ordered set: values are
// trimmed, empties dropped, duplicates removed keeping first occurrence.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// JoinList is the inverse of SplitList, normalizing as it joins.
func JoinList(values []string) string {
	return strings.Join(SplitList(strings.Join(values, ",")), ",")
}
