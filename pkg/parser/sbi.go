package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

var (
	// "12 Aug 25 UPI-Swiggy Instamart 326.00 D"
	sbiTxPattern   = regexp.MustCompile(`^(\d{2}\s\w{3}\s\d{2})\s+(.*?)\s+([\d,]+\.\d{2})\s+([DC])$`)
	sbiCardPattern = regexp.MustCompile(`^X{4}\sX{4}\sX{4}\sXX\d{2}$`)
	sbiStmtPeriod  = regexp.MustCompile(`for Statement Period:\s*(.+)`)
	sbiTotalDue    = regexp.MustCompile(`Total Amount [Dd]ue\s*:?\s*₹?\s*([\d,]+\.\d{2})`)
	// reward block: opening earned redeemed closing lapsed on one row
	sbiRewardNumbers = regexp.MustCompile(`^(\d[\d,]*\s+){4}\d[\d,]*$`)
)

// SBI parses SBI credit card PDF statements. The transaction table starts
// after a "Date Transaction Details Amount" header; each row closes with a
// D or C marker. The reward summary is a bare block of 5 numbers.
type SBI struct {
	logger    *log.Logger
	passwords Passwords
}

func NewSBI(logger *log.Logger, passwords Passwords) *SBI {
	return &SBI{logger: logger, passwords: passwords}
}

func (p *SBI) Name() string { return "sbi" }

func (p *SBI) ExtractLines(path string) (*Extraction, error) {
	lines, err := pdfLines(path, p.passwords.Get("SBI", ""))
	if err != nil {
		return nil, err
	}
	return p.parseLines(lines)
}

func (p *SBI) parseLines(lines []string) (*Extraction, error) {
	ext := &Extraction{Currency: "INR"}

	var cardHolder, cardNumber string
	var opening, earned, redeemed, closing, lapsed *int
	insideTransactions := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if idx := strings.Index(line, " Credit Card Number"); idx > 0 && cardHolder == "" {
			cardHolder = strings.TrimSpace(line[:idx])
		}
		if sbiCardPattern.MatchString(line) && cardNumber == "" {
			cardNumber = line
		}
		if m := sbiStmtPeriod.FindStringSubmatch(line); m != nil && ext.StatementDate == "" {
			ext.StatementDate = strings.TrimSpace(m[1])
		}
		if m := sbiTotalDue.FindStringSubmatch(line); m != nil {
			ext.DeclaredTotal = "-" + m[1]
		}

		if sbiRewardNumbers.MatchString(line) {
			fields := strings.Fields(line)
			vals := make([]*int, 0, 5)
			for _, f := range fields {
				v, err := strconv.Atoi(strings.ReplaceAll(f, ",", ""))
				if err != nil {
					vals = nil
					break
				}
				vals = append(vals, &v)
			}
			if len(vals) == 5 {
				opening, earned, redeemed, closing, lapsed = vals[0], vals[1], vals[2], vals[3], vals[4]
			}
		}

		if strings.HasPrefix(line, "Date Transaction Details Amount") {
			insideTransactions = true
			continue
		}
		if !insideTransactions {
			continue
		}

		m := sbiTxPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		txType := models.TypeDebit
		if m[4] == "C" {
			txType = models.TypeCredit
		}
		ext.Lines = append(ext.Lines, RawLine{
			Date:        m[1],
			Description: m[2],
			Amount:      m[3],
			Type:        txType,
			CardNumber:  cardNumber,
			CardHolder:  cardHolder,
			Raw:         line,
		})
	}

	if len(ext.Lines) == 0 {
		return nil, ErrCannotParse
	}

	if opening != nil && earned != nil && redeemed != nil && closing != nil && lapsed != nil {
		ext.Rewards = append(ext.Rewards, RewardBlock{
			StatementDate:  ext.StatementDate,
			CardNumber:     cardNumber,
			CardHolder:     cardHolder,
			OpeningBalance: opening,
			Earned:         earned,
			Redeemed:       redeemed,
			AdjustedLapsed: lapsed,
			ClosingBalance: closing,
		})
	}
	return ext, nil
}
