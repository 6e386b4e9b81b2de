// Package rewards validates the reward-points summaries some issuers
// print on statements: opening + earned - redeemed - adjusted must equal
// the closing balance.
package rewards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

// WarnSink receives summaries that fail validation.
type WarnSink interface {
	AppendIssue(s models.RewardSummary, issue string) error
}

// Validate checks one summary. The returned message is empty when the
// balances reconcile, otherwise it names the missing fields or the delta.
func Validate(s models.RewardSummary) (bool, string) {
	var missing []string
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"openingBalance", s.OpeningBalance},
		{"earned", s.Earned},
		{"redeemed", s.Redeemed},
		{"adjustedLapsed", s.AdjustedLapsed},
		{"closingBalance", s.ClosingBalance},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return false, "incomplete_fields: " + strings.Join(missing, ",")
	}

	expected := *s.OpeningBalance + *s.Earned - *s.Redeemed - *s.AdjustedLapsed
	if expected == *s.ClosingBalance {
		return true, ""
	}
	return false, fmt.Sprintf("mismatch: expected_closing=%d, actual_closing=%d", expected, *s.ClosingBalance)
}

// ValidateAll validates a batch and writes every failure to the sink.
// Returns the number of invalid summaries.
func ValidateAll(summaries []models.RewardSummary, sink WarnSink, logger *log.Logger) int {
	invalid := 0
	for _, s := range summaries {
		ok, msg := Validate(s)
		if ok {
			continue
		}
		invalid++
		logger.Warn("reward summary failed validation", "statement", s.StatementDate, "card", s.CardNumber, "issue", msg)
		if sink != nil {
			if err := sink.AppendIssue(s, msg); err != nil {
				logger.Warn("failed to append reward warning", "error", err)
			}
		}
	}
	return invalid
}
