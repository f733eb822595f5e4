package storage

import (
	"testing"
	"time"
)

func TestFormatOrderNumber(t *testing.T) {
	day := time.Date(2026, 8, 27, 15, 4, 0, 0, time.UTC)
	if got := FormatOrderNumber(day, 1); got != "GRS-20260827-0001" {
		t.Fatalf("FormatOrderNumber = %q", got)
	}
	if got := FormatOrderNumber(day, 12345); got != "GRS-20260827-12345" {
		t.Fatalf("overflow seq = %q", got)
	}
}

func TestOrderNumberSeq(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"GRS-20260827-0001", 1},
		{"GRS-20260827-0420", 420},
		{"GRS-20260827-12345", 12345},
		{"garbage", 0},
		{"GRS-20260827-", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := OrderNumberSeq(tc.in); got != tc.want {
			t.Errorf("OrderNumberSeq(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestOrderNumberRoundTrip(t *testing.T) {
	day := time.Now()
	for _, seq := range []int{1, 9, 42, 9999, 10000} {
		if got := OrderNumberSeq(FormatOrderNumber(day, seq)); got != seq {
			t.Errorf("seq %d round-tripped to %d", seq, got)
		}
	}
}

func TestEditableFields(t *testing.T) {
	fields := EditableFields()
	want := []string{"colors", "description", "name", "photo", "price", "sizes", "stock"}
	if len(fields) != len(want) {
		t.Fatalf("EditableFields = %v", fields)
	}
	for i, f := range want {
		if fields[i] != f {
			t.Fatalf("EditableFields = %v, want %v", fields, want)
		}
	}

	if !IsEditableField("price") {
		t.Fatal("price should be editable")
	}
	for _, f := range []string{"id", "category_id", "created_at", "payload", ""} {
		if IsEditableField(f) {
			t.Errorf("%q must not be editable", f)
		}
	}
}
