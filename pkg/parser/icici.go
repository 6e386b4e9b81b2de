package parser

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

var (
	// "6528XXXXXXXX1005" style masked card line
	iciciCardPattern = regexp.MustCompile(`^\d{4}X{8}\d{4}$`)
	// date | reference | description | merchant code | amount | optional CR
	iciciTxPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d+)\s+(.*?)\s+(\d+)\s+([\d,]+\.\d{2})(?:\s+(CR))?$`)
	iciciStmtDate  = regexp.MustCompile(`Statement Date\s*:?\s*(\d{1,2}/\d{1,2}/\d{4}|\w+ \d{1,2}, \d{4})`)
	iciciTotalDue  = regexp.MustCompile(`Total Amount [Dd]ue\s*:?\s*₹?\s*([\d,]+\.\d{2})`)
)

// ICICI parses ICICI credit card PDF statements. Transactions carry a
// reference number and merchant code; the active card is announced by a
// masked card-number line above its rows. Statements come password
// protected.
type ICICI struct {
	logger    *log.Logger
	passwords Passwords
}

func NewICICI(logger *log.Logger, passwords Passwords) *ICICI {
	return &ICICI{logger: logger, passwords: passwords}
}

func (p *ICICI) Name() string { return "icici" }

func (p *ICICI) ExtractLines(path string) (*Extraction, error) {
	lines, err := pdfLines(path, p.passwords.Get("ICICI", ""))
	if err != nil {
		return nil, err
	}
	return p.parseLines(lines)
}

func (p *ICICI) parseLines(lines []string) (*Extraction, error) {
	ext := &Extraction{Currency: "INR"}
	var currentCard string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if iciciCardPattern.MatchString(line) {
			currentCard = line
			continue
		}
		if m := iciciStmtDate.FindStringSubmatch(line); m != nil {
			ext.StatementDate = m[1]
		}
		if m := iciciTotalDue.FindStringSubmatch(line); m != nil {
			ext.DeclaredTotal = "-" + m[1]
		}

		m := iciciTxPattern.FindStringSubmatch(line)
		if m == nil || currentCard == "" {
			continue
		}
		txType := models.TypeDebit
		if m[6] == "CR" {
			txType = models.TypeCredit
		}
		ext.Lines = append(ext.Lines, RawLine{
			Date:        m[1],
			Description: m[3],
			Amount:      m[5],
			Type:        txType,
			CardNumber:  currentCard,
			Raw:         line,
		})
	}

	if len(ext.Lines) == 0 {
		return nil, ErrCannotParse
	}
	return ext, nil
}
