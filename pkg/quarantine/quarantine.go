// Package quarantine holds the durable records of rows and transactions
// that could not be fully processed. Quarantine is a first-class output:
// nothing is silently dropped, everything lands in an append-only CSV an
// operator can work through.
package quarantine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/billfold/billfold/pkg/models"
)

// Row is one raw statement row that failed normalization, kept with the
// reason so it can be remediated by hand.
type Row struct {
	ImportID string
	Raw      string
	Reason   string
}

type csvLog struct {
	mu     sync.Mutex
	path   string
	header []string
}

func (l *csvLog) append(record []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create quarantine dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open quarantine log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat quarantine log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(l.header); err != nil {
			return fmt.Errorf("write quarantine header: %w", err)
		}
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write quarantine record: %w", err)
	}
	w.Flush()
	return w.Error()
}

// RowLog is the unparsed-rows sink.
type RowLog struct {
	log csvLog
}

func NewRowLog(path string) *RowLog {
	return &RowLog{log: csvLog{
		path:   path,
		header: []string{"importId", "raw", "reason"},
	}}
}

func (l *RowLog) AppendRow(row Row) error {
	return l.log.append([]string{row.ImportID, row.Raw, row.Reason})
}

// ReviewLog is the uncategorized-transactions sink consumed by the manual
// correction flow.
type ReviewLog struct {
	log csvLog
}

func NewReviewLog(path string) *ReviewLog {
	return &ReviewLog{log: csvLog{
		path:   path,
		header: []string{"date", "merchant", "description", "amount", "currency", "importId"},
	}}
}

func (l *ReviewLog) AppendReview(tx models.Transaction) error {
	return l.log.append([]string{
		tx.Date.Format("2006-01-02"),
		tx.Merchant,
		tx.Description,
		tx.Amount.String(),
		tx.Currency,
		tx.ImportID,
	})
}

// RewardWarnLog records reward summaries whose balances do not reconcile.
type RewardWarnLog struct {
	log csvLog
}

func NewRewardWarnLog(path string) *RewardWarnLog {
	return &RewardWarnLog{log: csvLog{
		path: path,
		header: []string{
			"statementDate", "cardNumber", "cardHolder",
			"openingBalance", "earned", "redeemed", "adjustedLapsed",
			"closingBalance", "issue",
		},
	}}
}

func (l *RewardWarnLog) AppendIssue(s models.RewardSummary, issue string) error {
	return l.log.append([]string{
		s.StatementDate,
		s.CardNumber,
		s.CardHolder,
		intField(s.OpeningBalance),
		intField(s.Earned),
		intField(s.Redeemed),
		intField(s.AdjustedLapsed),
		intField(s.ClosingBalance),
		issue,
	})
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
