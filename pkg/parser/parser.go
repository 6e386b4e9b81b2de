package parser

import (
	"errors"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrCannotParse is returned by a bank parser that opened the document but
// found nothing it recognizes. The dispatcher falls back to the generic
// parser on it.
var ErrCannotParse = errors.New("parser cannot confidently read this document")

// RawLine is one candidate transaction row exactly as extracted from a
// document. All fields are still text; normalization happens downstream.
type RawLine struct {
	Date         string
	Description  string
	Amount       string
	Type         string // models.TypeDebit, models.TypeCredit or "" when the row does not say
	CardNumber   string
	CardHolder   string
	RewardPoints string
	Raw          string // original source text, kept for quarantine records
}

// RewardBlock is a reward-points summary block found on a statement.
type RewardBlock struct {
	StatementDate  string
	CardNumber     string
	CardHolder     string
	OpeningBalance *int
	Earned         *int
	Redeemed       *int
	AdjustedLapsed *int
	ClosingBalance *int
}

// Extraction is everything one parser pulls out of one document.
type Extraction struct {
	Lines         []RawLine
	DeclaredTotal string // statement total for reconciliation, empty when absent
	StatementDate string
	Currency      string // issuer default, used when a row carries no symbol
	Rewards       []RewardBlock
}

// Parser extracts candidate transaction rows from one document format.
// Implementations are registered in the Registry under a format key; the
// registry is the single extension point for new banks.
type Parser interface {
	Name() string
	ExtractLines(path string) (*Extraction, error)
}

// Registry maps format hints to parsers, with a generic fallback for
// documents no specific parser claims.
type Registry struct {
	logger  *log.Logger
	parsers map[string]Parser
	generic Parser
}

// NewRegistry builds a registry with the built-in bank parsers registered.
func NewRegistry(logger *log.Logger, passwords Passwords) *Registry {
	r := &Registry{
		logger:  logger,
		parsers: make(map[string]Parser),
		generic: NewGeneric(logger),
	}
	r.Register("hdfc", NewHDFC(logger, passwords))
	r.Register("icici", NewICICI(logger, passwords))
	r.Register("au", NewAUCard(logger, passwords))
	r.Register("sbi", NewSBI(logger, passwords))
	r.Register("axis_xls", NewAxisXLS(logger))
	return r
}

// Register binds a format key to a parser. Last registration wins, which
// lets callers override a built-in.
func (r *Registry) Register(key string, p Parser) {
	r.parsers[normalizeKey(key)] = p
}

// Resolve returns the parser registered for hint. The second return is
// false when no specific parser matched and the generic fallback was
// returned instead.
func (r *Registry) Resolve(hint string) (Parser, bool) {
	if p, ok := r.parsers[normalizeKey(hint)]; ok {
		return p, true
	}
	r.logger.Debug("no specific parser for hint, using generic", "hint", hint)
	return r.generic, false
}

// Generic returns the fallback parser.
func (r *Registry) Generic() Parser {
	return r.generic
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
