package domain

import "testing"

func TestParseMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"750", 75000},
		{"749.99", 74999},
		{"749.9", 74990},
		{"12,5", 1250},
		{"0.005", 1},
		{"0.004", 0},
		{" 1 000 ", 100000},
		{".5", 50},
		{"+3", 300},
		{"0", 0},
		{"92233720368547757.99", 9223372036854775799}, // largest representable
	}
	for _, tc := range cases {
		got, err := ParseMinorUnits(tc.in)
		if err != nil {
			t.Errorf("ParseMinorUnits(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMinorUnits(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMinorUnitsRejects(t *testing.T) {
	rejects := []string{
		"", "-5", "abc", "1.2.3", "12x", "--",
		"461168601842738800",   // would wrap negative after the *100
		"92233720368547759",    // one above the largest representable amount
		"99999999999999999999", // far past int64
	}
	for _, in := range rejects {
		if _, err := ParseMinorUnits(in); !IsKind(err, KindValidationFailed) {
			t.Errorf("ParseMinorUnits(%q): want VALIDATION_FAILED, got %v", in, err)
		}
	}
}

func TestFormatMinorUnits(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{75000, "750.00"},
		{74999, "749.99"},
		{5, "0.05"},
		{0, "0.00"},
		{-150, "-1.50"},
	}
	for _, tc := range cases {
		if got := FormatMinorUnits(tc.in); got != tc.want {
			t.Errorf("FormatMinorUnits(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
