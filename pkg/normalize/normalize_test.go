package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"05/01/2024", "2024-01-05"},
		{"05-01-2024", "2024-01-05"},
		{"2024-01-05", "2024-01-05"},
		{"5 Jan 2024", "2024-01-05"},
		{"15 Aug, 2025", "2025-08-15"},
		{"4-Dec-2024", "2024-12-04"},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", c.in, err)
			continue
		}
		if got.Format("2006-01-02") != c.want {
			t.Errorf("ParseDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestParseDateUnknown(t *testing.T) {
	for _, in := range []string{"", "N/A", "31st of June", "sometime"} {
		_, err := ParseDate(in)
		var dateErr *DateParseError
		if !errors.As(err, &dateErr) {
			t.Errorf("ParseDate(%q): expected DateParseError, got %v", in, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		currency string
	}{
		{"1,234.56", "1234.56", ""},
		{"-500.00", "-500", ""},
		{"(75.25)", "-75.25", ""},
		{"₹4,000.00", "4000", "INR"},
		{"£12.50", "12.5", "GBP"},
		{"10.00 Cr", "10", ""},
		{"287.00 Dr", "-287", ""},
		{"5552.36", "5552.36", ""},
	}
	for _, c := range cases {
		got, currency, err := ParseAmount(c.in)
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got.String(), c.want)
		}
		if currency != c.currency {
			t.Errorf("ParseAmount(%q) currency = %q, want %q", c.in, currency, c.currency)
		}
	}
}

func TestParseAmountNeverZeroCoerces(t *testing.T) {
	for _, in := range []string{"", "N/A", "--", "12..3", "amount"} {
		_, _, err := ParseAmount(in)
		var amtErr *AmountParseError
		if !errors.As(err, &amtErr) {
			t.Errorf("ParseAmount(%q): expected AmountParseError, got %v", in, err)
		}
	}
}

func TestMaskText(t *testing.T) {
	cases := []struct {
		in   string
		last string
	}{
		{"card 4111111111111111 charged", "1111"},
		{"4111 1111 1111 1111", "1111"},
		{"6528-1234-5678-1005", "1005"},
	}
	for _, c := range cases {
		got := MaskText(c.in)
		if strings.Contains(got, "4111111111111111") || strings.Contains(got, "1234") && c.last == "1005" {
			t.Errorf("MaskText(%q) = %q still exposes digits", c.in, got)
		}
		if !strings.HasSuffix(strings.TrimSuffix(got, " charged"), c.last) {
			t.Errorf("MaskText(%q) = %q, want suffix %s", c.in, got, c.last)
		}
	}

	// Short runs like dates or amounts are left alone.
	if got := MaskText("05/01/2024 STARBUCKS #4521 500.00"); got != "05/01/2024 STARBUCKS #4521 500.00" {
		t.Errorf("MaskText changed non-card text: %q", got)
	}
}

func TestCardLast4(t *testing.T) {
	cases := map[string]string{
		"6528XXXXXXXX1005":    "1005",
		"4521":                "4521",
		"1234 5678 9012 3456": "3456",
	}
	for in, want := range cases {
		if got := CardLast4(in); got != want {
			t.Errorf("CardLast4(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMerchant(t *testing.T) {
	cases := map[string]string{
		"STARBUCKS #4521":     "STARBUCKS",
		"  starbucks   4521 ": "STARBUCKS",
		"AMAZON PAY":          "AMAZON PAY",
		"Clix*GadgetGalaxy":   "CLIX*GADGETGALAXY",
	}
	for in, want := range cases {
		if got := Merchant(in); got != want {
			t.Errorf("Merchant(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("statement"))
	b := HashBytes([]byte("statement"))
	c := HashBytes([]byte("statement2"))
	if a != b {
		t.Error("identical bytes must hash identically")
	}
	if a == c {
		t.Error("distinct bytes must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex digest, got %d chars", len(a))
	}
}
