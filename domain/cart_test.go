package domain

import "testing"

func sampleCart() Cart {
	return Cart{
		"3_M_Black": {Item: CartItem{ProductID: 3, Name: "Hoodie", Price: 75000, Size: "M", Color: "Black"}, Qty: 2},
		"1_S_Red":   {Item: CartItem{ProductID: 1, Name: "Tee", Price: 20000, Size: "S", Color: "Red"}, Qty: 1},
	}
}

func TestCartTotal(t *testing.T) {
	if got := sampleCart().Total(); got != 170000 {
		t.Fatalf("Total = %d, want 170000", got)
	}
	if got := (Cart{}).Total(); got != 0 {
		t.Fatalf("empty Total = %d", got)
	}
}

func TestCartLinesOrdered(t *testing.T) {
	lines := sampleCart().Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	// Key order: "1_S_Red" < "3_M_Black".
	if lines[0].Item.Name != "Tee" || lines[1].Item.Name != "Hoodie" {
		t.Fatalf("order = %q, %q", lines[0].Item.Name, lines[1].Item.Name)
	}
}

func TestCartValueScanRoundTrip(t *testing.T) {
	orig := sampleCart()
	raw, err := orig.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	var restored Cart
	if err := restored.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if restored.Total() != orig.Total() || len(restored) != len(orig) {
		t.Fatalf("restored = %+v", restored)
	}
	if restored["3_M_Black"].Item.Color != "Black" {
		t.Fatalf("snapshot lost item fields: %+v", restored["3_M_Black"])
	}
}

func TestSplitJoinList(t *testing.T) {
	got := SplitList(" S, M ,L, ,M")
	if len(got) != 3 || got[0] != "S" || got[1] != "M" || got[2] != "L" {
		t.Fatalf("SplitList = %v", got)
	}
	if SplitList("  ") != nil {
		t.Fatal("blank list should be nil")
	}
	if joined := JoinList([]string{" S", "M ", "", "S"}); joined != "S,M" {
		t.Fatalf("JoinList = %q", joined)
	}
}
