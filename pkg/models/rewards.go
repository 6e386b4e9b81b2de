package models

// RewardSummary is the reward-points block some issuers print on a
// statement: balances at the period edges plus the movements between them.
type RewardSummary struct {
	StatementDate  string
	CardNumber     string
	CardHolder     string
	OpeningBalance *int
	Earned         *int
	Redeemed       *int
	AdjustedLapsed *int
	ClosingBalance *int
	ParserUsed     string
	ImportID       string
}
