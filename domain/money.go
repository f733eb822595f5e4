package domain

import (
	"fmt"
	"strings"
)

// ParseMinorUnits converts decimal price text ("750", "749.99", "12,5") into
// integer minor currency units, rounding half-up to the nearest unit. Only
// non-negative amounts are accepted.
func ParseMinorUnits(text string) (int64, error) {
	const op = "money.parse"

	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, E(KindValidationFailed, op, "empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, Ef(KindValidationFailed, op, "negative amount %q", text)
	}
	s = strings.TrimPrefix(s, "+")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if strings.ContainsRune(fracPart, '.') {
			return 0, Ef(KindValidationFailed, op, "malformed amount %q", text)
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return 0, Ef(KindValidationFailed, op, "malformed amount %q", text)
	}

	// Headroom for the *100 plus two fractional digits below.
	const maxUnits = ((1 << 63) - 1 - 99) / 100

	var units int64
	for _, r := range intPart {
		units = units*10 + int64(r-'0')
		if units > maxUnits {
			return 0, Ef(KindValidationFailed, op, "amount %q out of range", text)
		}
	}

	// Two fractional digits make up the minor units; the third rounds.
	minor := units * 100
	switch {
	case len(fracPart) >= 2:
		minor += int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			minor++
		}
	case len(fracPart) == 1:
		minor += int64(fracPart[0]-'0') * 10
	}
	return minor, nil
}

// FormatMinorUnits renders minor units as decimal text with two places.
func FormatMinorUnits(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
