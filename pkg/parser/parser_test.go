package parser

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(log.Default(), Passwords{})
}

func TestRegistryResolve(t *testing.T) {
	r := testRegistry(t)

	p, ok := r.Resolve("hdfc")
	if !ok || p.Name() != "hdfc" {
		t.Fatalf("Resolve(hdfc) = %v, %v", p, ok)
	}

	// Hints are case-insensitive.
	p, ok = r.Resolve("  ICICI ")
	if !ok || p.Name() != "icici" {
		t.Fatalf("Resolve(ICICI) = %v, %v", p, ok)
	}

	// Unknown hints fall back to the generic parser.
	p, ok = r.Resolve("kotak")
	if ok || p.Name() != "generic" {
		t.Fatalf("Resolve(kotak) = %v, %v, want generic fallback", p, ok)
	}
}

func TestRegistryRegisterOverride(t *testing.T) {
	r := testRegistry(t)
	custom := NewGeneric(log.Default())
	r.Register("HDFC", custom)

	p, ok := r.Resolve("hdfc")
	if !ok || p != Parser(custom) {
		t.Fatal("late registration must win")
	}
}

func TestHDFCParseLines(t *testing.T) {
	lines := []string{
		"Statement Date : 15 Aug, 2025",
		"JOHN DOE",
		"DOMESTIC TRANSACTIONS",
		"01/08/2025 AMAZON PAY INDIA C 1,234.56",
		"05/08/2025 SWIGGY BANGALORE + 20 C 860.00",
		"07/08/2025 PAYMENT RECEIVED C 5,000.00 Cr",
		"Total Dues : 2,094.56",
		"1,200 Points Earned",
		"1,000 340 100 40",
	}

	p := NewHDFC(log.Default(), Passwords{})
	ext, err := p.parseLines(lines)
	if err != nil {
		t.Fatalf("parseLines: %v", err)
	}

	if len(ext.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(ext.Lines))
	}
	if ext.DeclaredTotal != "-2,094.56" {
		t.Errorf("declared total = %q", ext.DeclaredTotal)
	}
	if ext.StatementDate != "15 Aug, 2025" {
		t.Errorf("statement date = %q", ext.StatementDate)
	}

	first := ext.Lines[0]
	if first.Description != "AMAZON PAY INDIA" || first.Amount != "1,234.56" || first.Type != models.TypeDebit {
		t.Errorf("unexpected first line: %+v", first)
	}
	if first.CardHolder != "JOHN DOE" {
		t.Errorf("cardholder = %q", first.CardHolder)
	}
	if ext.Lines[1].RewardPoints != "20" {
		t.Errorf("reward points = %q", ext.Lines[1].RewardPoints)
	}
	if ext.Lines[2].Type != models.TypeCredit {
		t.Errorf("Cr row should be credit: %+v", ext.Lines[2])
	}

	if len(ext.Rewards) != 1 {
		t.Fatalf("expected reward block, got %d", len(ext.Rewards))
	}
	rw := ext.Rewards[0]
	if *rw.OpeningBalance != 1000 || *rw.Earned != 340 || *rw.Redeemed != 100 ||
		*rw.AdjustedLapsed != 40 || *rw.ClosingBalance != 1200 {
		t.Errorf("unexpected reward block: %+v", rw)
	}
}

func TestHDFCCannotParse(t *testing.T) {
	p := NewHDFC(log.Default(), Passwords{})
	_, err := p.parseLines([]string{"This is a welcome letter", "Nothing tabular here"})
	if !errors.Is(err, ErrCannotParse) {
		t.Fatalf("expected ErrCannotParse, got %v", err)
	}
}

func TestICICIParseLines(t *testing.T) {
	lines := []string{
		"Statement Date : 15/08/2025",
		"6528XXXXXXXX1005",
		"04/08/2025 11725387534 BBPS Payment received 0 10.00 CR",
		"10/08/2025 11770955856 Myntra 111 5,552.36",
	}

	p := NewICICI(log.Default(), Passwords{})
	ext, err := p.parseLines(lines)
	if err != nil {
		t.Fatalf("parseLines: %v", err)
	}

	if len(ext.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ext.Lines))
	}
	if ext.Lines[0].Type != models.TypeCredit || ext.Lines[0].Amount != "10.00" {
		t.Errorf("unexpected credit row: %+v", ext.Lines[0])
	}
	if ext.Lines[1].Type != models.TypeDebit || ext.Lines[1].Description != "Myntra" {
		t.Errorf("unexpected debit row: %+v", ext.Lines[1])
	}
	if ext.Lines[1].CardNumber != "6528XXXXXXXX1005" {
		t.Errorf("card number = %q", ext.Lines[1].CardNumber)
	}
}

func TestICICIRowsBeforeCardLineIgnored(t *testing.T) {
	p := NewICICI(log.Default(), Passwords{})
	_, err := p.parseLines([]string{
		"04/08/2025 11725387534 BBPS Payment received 0 10.00 CR",
	})
	if !errors.Is(err, ErrCannotParse) {
		t.Fatalf("rows without a card context should not parse, got %v", err)
	}
}

func TestSBIParseLines(t *testing.T) {
	lines := []string{
		"YAYIN VASHIST Credit Card Number",
		"XXXX XXXX XXXX XX51",
		"for Statement Period: 12 Jul 25 to 11 Aug 25",
		"1,000 500 200 1,280 20",
		"Date Transaction Details Amount ( ` )",
		"12 Aug 25 UPI-Swiggy Instamart 326.00 D",
		"13 Aug 25 PAYMENT RECEIVED 1,000.00 C",
	}

	p := NewSBI(log.Default(), Passwords{})
	ext, err := p.parseLines(lines)
	if err != nil {
		t.Fatalf("parseLines: %v", err)
	}

	if len(ext.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ext.Lines))
	}
	if ext.Lines[0].CardHolder != "YAYIN VASHIST" {
		t.Errorf("cardholder = %q", ext.Lines[0].CardHolder)
	}
	if ext.Lines[0].CardNumber != "XXXX XXXX XXXX XX51" {
		t.Errorf("card number = %q", ext.Lines[0].CardNumber)
	}
	if ext.Lines[0].Type != models.TypeDebit || ext.Lines[1].Type != models.TypeCredit {
		t.Errorf("unexpected row types: %+v", ext.Lines)
	}
	if ext.StatementDate != "12 Jul 25 to 11 Aug 25" {
		t.Errorf("statement period = %q", ext.StatementDate)
	}

	if len(ext.Rewards) != 1 {
		t.Fatalf("expected reward block, got %d", len(ext.Rewards))
	}
	rw := ext.Rewards[0]
	if *rw.OpeningBalance != 1000 || *rw.Earned != 500 || *rw.Redeemed != 200 ||
		*rw.ClosingBalance != 1280 || *rw.AdjustedLapsed != 20 {
		t.Errorf("unexpected reward block: %+v", rw)
	}
}

func TestAUCardParseLines(t *testing.T) {
	lines := []string{
		"Hello, RAVI KUMAR",
		"Statement for your credit card ending with 7425 01 Aug 2025",
		"Your Transactions",
		"SWIGGY INSTAMART BANGALORE",
		"19 ₹4,000.00",
		"01 Aug 2025 Dr 40RP",
		"AMAZON PAY REFUND",
		"20 ₹1,200.00",
		"03 Aug 2025 Cr",
		"Reward Points you have earned this month",
		"Opening balance 1,000",
		"Earned + 140",
		"Bonus Points 60",
		"Redeemed 100",
		"Lapsed 40",
		"Total reward points 1,060",
	}

	p := NewAUCard(log.Default(), Passwords{})
	ext, err := p.parseLines(lines)
	if err != nil {
		t.Fatalf("parseLines: %v", err)
	}

	if len(ext.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(ext.Lines))
	}
	first := ext.Lines[0]
	if first.Description != "SWIGGY INSTAMART BANGALORE" ||
		first.Amount != "4000.00" ||
		first.Date != "01 Aug 2025" ||
		first.Type != models.TypeDebit ||
		first.RewardPoints != "40" {
		t.Errorf("unexpected first transaction: %+v", first)
	}
	if first.CardNumber != "7425" || first.CardHolder != "RAVI KUMAR" {
		t.Errorf("card context not propagated: %+v", first)
	}
	if ext.Lines[1].Type != models.TypeCredit {
		t.Errorf("second transaction should be credit: %+v", ext.Lines[1])
	}

	if len(ext.Rewards) != 1 {
		t.Fatalf("expected reward block, got %d", len(ext.Rewards))
	}
	rw := ext.Rewards[0]
	if *rw.OpeningBalance != 1000 || *rw.Earned != 200 || *rw.Redeemed != 100 ||
		*rw.AdjustedLapsed != 40 || *rw.ClosingBalance != 1060 {
		t.Errorf("unexpected reward block: %+v", rw)
	}
}

func TestPasswordsGet(t *testing.T) {
	p := Passwords{
		"ICICI": {"default": "secret", "1005": "other"},
	}
	if got := p.Get("icici", ""); got != "secret" {
		t.Errorf("default password = %q", got)
	}
	if got := p.Get("ICICI", "1005"); got != "other" {
		t.Errorf("suffix password = %q", got)
	}
	if got := p.Get("HDFC", ""); got != "" {
		t.Errorf("unknown bank password = %q", got)
	}
}
