package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

// Section headers that would otherwise pass the cardholder-name heuristic.
var hdfcExcludeHeaders = map[string]bool{
	"DOMESTIC TRANSACTIONS":      true,
	"INTERNATIONAL TRANSACTIONS": true,
	"REWARD POINTS":              true,
	"STATEMENT":                  true,
	"PAYMENT DUE":                true,
	"CREDIT SUMMARY":             true,
	"POINTS EARNED":              true,
	"TOTAL CREDIT LIMIT":         true,
	"IMPORTANT INFORMATION":      true,
	"DETAILS":                    true,
}

var (
	hdfcTxPattern     = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(?:\+\s*(\d+)\s+)?C\s+([\d,]+\.\d{2})\s*(Cr)?$`)
	hdfcStmtDate      = regexp.MustCompile(`(?:Statement|Billing) Date\s*:?\s*(\d{1,2}\s\w+,?\s\d{4})`)
	hdfcTotalDue      = regexp.MustCompile(`Total Dues\s*:?\s*([\d,]+\.\d{2})`)
	hdfcRewardNumbers = regexp.MustCompile(`^\d{1,3}(,\d{3})*\s+\d{1,3}(,\d{3})*\s+\d{1,3}(,\d{3})*\s+\d{1,3}(,\d{3})*$`)
)

// HDFC parses HDFC credit card PDF statements. The statement lists
// transactions per cardholder: the primary holder appears in ALL CAPS,
// add-on holders in title case, with sections for domestic and
// international spends and a reward-points block.
type HDFC struct {
	logger    *log.Logger
	passwords Passwords
}

func NewHDFC(logger *log.Logger, passwords Passwords) *HDFC {
	return &HDFC{logger: logger, passwords: passwords}
}

func (p *HDFC) Name() string { return "hdfc" }

func (p *HDFC) ExtractLines(path string) (*Extraction, error) {
	lines, err := pdfLines(path, p.passwords.Get("HDFC", ""))
	if err != nil {
		return nil, err
	}
	return p.parseLines(lines)
}

func (p *HDFC) parseLines(lines []string) (*Extraction, error) {
	ext := &Extraction{Currency: "INR"}

	var currentHolder, primaryHolder string
	var opening, earned, redeemed, adjusted, closing *int

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := hdfcStmtDate.FindStringSubmatch(line); m != nil {
			ext.StatementDate = m[1]
		}
		if m := hdfcTotalDue.FindStringSubmatch(line); m != nil {
			ext.DeclaredTotal = "-" + m[1]
		}

		if looksLikeCardholder(line) {
			if line == strings.ToUpper(line) && primaryHolder == "" {
				primaryHolder = line
			}
			currentHolder = line
			continue
		}

		if m := hdfcTxPattern.FindStringSubmatch(line); m != nil {
			txType := models.TypeDebit
			if m[5] == "Cr" {
				txType = models.TypeCredit
			}
			ext.Lines = append(ext.Lines, RawLine{
				Date:         m[1],
				Description:  m[2],
				Amount:       m[4],
				Type:         txType,
				RewardPoints: m[3],
				CardHolder:   currentHolder,
				Raw:          line,
			})
			continue
		}

		// Reward block: closing balance sits on the "Points Earned" line,
		// the remaining four numbers share one row.
		if strings.Contains(line, "Points Earned") {
			if v, err := strconv.Atoi(strings.ReplaceAll(strings.Fields(line)[0], ",", "")); err == nil {
				closing = &v
			}
		} else if hdfcRewardNumbers.MatchString(line) {
			fields := strings.Fields(line)
			vals := make([]*int, 0, 4)
			for _, f := range fields {
				v, err := strconv.Atoi(strings.ReplaceAll(f, ",", ""))
				if err != nil {
					vals = nil
					break
				}
				vals = append(vals, &v)
			}
			if len(vals) == 4 {
				opening, earned, redeemed, adjusted = vals[0], vals[1], vals[2], vals[3]
			}
		}
	}

	if len(ext.Lines) == 0 {
		return nil, ErrCannotParse
	}

	if opening != nil && earned != nil && redeemed != nil && adjusted != nil && closing != nil {
		if primaryHolder == "" {
			primaryHolder = "PRIMARY CARDHOLDER"
		}
		ext.Rewards = append(ext.Rewards, RewardBlock{
			StatementDate:  ext.StatementDate,
			CardHolder:     primaryHolder,
			OpeningBalance: opening,
			Earned:         earned,
			Redeemed:       redeemed,
			AdjustedLapsed: adjusted,
			ClosingBalance: closing,
		})
	}
	return ext, nil
}

// looksLikeCardholder reports whether a line reads like a holder name:
// a short all-caps or title-case run without digits or separators.
func looksLikeCardholder(line string) bool {
	clean := strings.TrimSpace(line)
	if hdfcExcludeHeaders[strings.ToUpper(clean)] {
		return false
	}
	if strings.ContainsAny(clean, "/:|") {
		return false
	}
	for _, r := range clean {
		if r >= '0' && r <= '9' {
			return false
		}
	}
	words := strings.Fields(clean)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	if clean == strings.ToUpper(clean) {
		return true
	}
	return isTitleCase(words)
}

func isTitleCase(words []string) bool {
	for _, w := range words {
		if w[0] < 'A' || w[0] > 'Z' {
			return false
		}
		if len(w) > 1 && strings.ToLower(w[1:]) != w[1:] {
			return false
		}
	}
	return true
}
