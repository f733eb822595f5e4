package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// CartItem is the immutable snapshot of a product variant as the buyer saw
// it. The unit price is carried here, never re-read from the catalog.
type CartItem struct {
	ProductID int64  `json:"id" validate:"required,min=1"`
	Name      string `json:"name" validate:"required"`
	Price     int64  `json:"price" validate:"min=0"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLine pairs an item snapshot with its quantity.
type CartLine struct {
	Item CartItem `json:"item" validate:"required"`
	Qty  int      `json:"qty" validate:"required,min=1"`
}

// Subtotal is unit price times quantity.
func (l CartLine) Subtotal() int64 { return l.Item.Price * int64(l.Qty) }

// Cart maps a line key (product/size/color) to its line. The key format is
// owned by the web app; the bot treats it as opaque.
type Cart map[string]CartLine

// Total sums subtotals over all lines.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c {
		total += l.Subtotal()
	}
	return total
}

// Lines returns the cart lines ordered by key so invoices render
// deterministically.
func (c Cart) Lines() []CartLine {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]CartLine, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, c[k])
	}
	return lines
}

// Value serializes the cart as JSON for the pending_orders snapshot column.
func (c Cart) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

// Scan restores a cart from its JSON snapshot.
func (c *Cart) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cart: cannot scan %T", src)
	}
}
