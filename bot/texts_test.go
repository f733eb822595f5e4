package bot

import (
	"errors"
	"strings"
	"testing"

	"github.com/cozn1l/gorosso/domain"
)

func TestUserText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "constraint violation names the cause",
			err:  domain.E(domain.KindConstraintViolation, "catalog.delete_category", "category has products"),
			want: "category still has products",
		},
		{
			name: "empty cart",
			err:  domain.E(domain.KindEmptyCart, "payments.submit_cart", "cart has no lines"),
			want: "cart is empty",
		},
		{
			name: "unknown payload suggests a new checkout",
			err:  domain.E(domain.KindUnknownPayload, "payments.capture", "confirmation for unknown payload"),
			want: "checkout again",
		},
		{
			name: "validation surfaces the message",
			err:  domain.E(domain.KindValidationFailed, "money.parse", "negative amount \"-5\""),
			want: "negative amount",
		},
		{
			name: "internal stays generic",
			err:  domain.Wrap(domain.KindInternal, "orders.capture", errors.New("pq: deadlock")),
			want: "Something went wrong",
		},
		{
			name: "uncoded stays generic",
			err:  errors.New("pq: deadlock"),
			want: "Something went wrong",
		},
	}
	for _, tc := range cases {
		got := userText(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Errorf("%s: userText = %q, want substring %q", tc.name, got, tc.want)
		}
		if strings.Contains(got, "pq:") {
			t.Errorf("%s: userText leaked internals: %q", tc.name, got)
		}
	}
}
