package rewards

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

func intp(v int) *int { return &v }

func validSummary() models.RewardSummary {
	return models.RewardSummary{
		StatementDate:  "15 Aug, 2025",
		OpeningBalance: intp(1000),
		Earned:         intp(340),
		Redeemed:       intp(100),
		AdjustedLapsed: intp(40),
		ClosingBalance: intp(1200),
	}
}

func TestValidate(t *testing.T) {
	ok, msg := Validate(validSummary())
	if !ok || msg != "" {
		t.Errorf("expected valid, got %v %q", ok, msg)
	}
}

func TestValidateMismatch(t *testing.T) {
	s := validSummary()
	s.ClosingBalance = intp(1300)
	ok, msg := Validate(s)
	if ok {
		t.Fatal("expected invalid")
	}
	if !strings.Contains(msg, "expected_closing=1200") || !strings.Contains(msg, "actual_closing=1300") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestValidateIncomplete(t *testing.T) {
	s := validSummary()
	s.Earned = nil
	s.Redeemed = nil
	ok, msg := Validate(s)
	if ok {
		t.Fatal("expected invalid")
	}
	if !strings.Contains(msg, "incomplete_fields") || !strings.Contains(msg, "earned") || !strings.Contains(msg, "redeemed") {
		t.Errorf("unexpected message: %q", msg)
	}
}

type memWarn struct {
	issues []string
}

func (m *memWarn) AppendIssue(_ models.RewardSummary, issue string) error {
	m.issues = append(m.issues, issue)
	return nil
}

func TestValidateAll(t *testing.T) {
	bad := validSummary()
	bad.ClosingBalance = intp(999)

	sink := &memWarn{}
	invalid := ValidateAll([]models.RewardSummary{validSummary(), bad}, sink, log.Default())
	if invalid != 1 {
		t.Errorf("invalid = %d, want 1", invalid)
	}
	if len(sink.issues) != 1 || !strings.Contains(sink.issues[0], "mismatch") {
		t.Errorf("unexpected sink contents: %v", sink.issues)
	}
}
