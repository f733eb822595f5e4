package bot

import (
	"testing"

	"github.com/cozn1l/gorosso/domain"
)

func TestParseWebAppOrder(t *testing.T) {
	data := `{
		"command": "create_order",
		"cart": {
			"3_M_Black": {"item": {"id": 3, "name": "Hoodie", "price": 75000, "size": "M", "color": "Black"}, "qty": 2},
			"7_--_--":  {"item": {"id": 7, "name": "Cap", "price": 20000, "size": "--", "color": "--"}, "qty": 1}
		}
	}`
	cart, err := parseWebAppOrder(data)
	if err != nil {
		t.Fatalf("parseWebAppOrder: %v", err)
	}
	if len(cart) != 2 {
		t.Fatalf("cart has %d lines, want 2", len(cart))
	}
	if got := cart.Total(); got != 170000 {
		t.Fatalf("total = %d, want 170000", got)
	}
	line := cart["3_M_Black"]
	if line.Item.ProductID != 3 || line.Qty != 2 || line.Item.Size != "M" {
		t.Fatalf("line = %+v", line)
	}
}

func TestParseWebAppOrderRejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"command": "create_order", "cart"`,
		"wrong command":   `{"command": "delete_everything", "cart": {"1_S_Red": {"item": {"id": 1}, "qty": 1}}}`,
		"missing cart":    `{"command": "create_order"}`,
		"zero qty":        `{"command": "create_order", "cart": {"1_S_Red": {"item": {"id": 1, "price": 100}, "qty": 0}}}`,
		"missing item id": `{"command": "create_order", "cart": {"1_S_Red": {"item": {"price": 100}, "qty": 1}}}`,
	}
	for name, data := range cases {
		if _, err := parseWebAppOrder(data); !domain.IsKind(err, domain.KindValidationFailed) {
			t.Errorf("%s: want VALIDATION_FAILED, got %v", name, err)
		}
	}
}
