package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types as they appear on card statements.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// Transaction is one line item extracted from a bill, normalized and
// categorized. Amount is signed: debits negative, credits positive.
// CardNumber only ever holds the last 4 digits.
type Transaction struct {
	ID            int64
	Date          time.Time
	Description   string
	Merchant      string
	Amount        decimal.Decimal
	Currency      string
	Type          string
	RewardPoints  *int
	CardNumber    string
	CardHolder    string
	SourceBank    string
	SourceDoc     string
	StatementDate string
	Category      string
	SubCategory   string
	ParserUsed    string
	ImportID      string
	CreatedAt     time.Time
}
