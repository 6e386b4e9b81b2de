package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/billfold/billfold/pkg/models"
)

var auFirstInt = regexp.MustCompile(`\d[\d,]*`)

// AUCard parses AU Small Finance credit card PDF statements. The layout
// spreads one transaction over three lines: description, then index and
// ₹amount, then date with a Dr/Cr marker and optional reward points.
type AUCard struct {
	logger    *log.Logger
	passwords Passwords
}

func NewAUCard(logger *log.Logger, passwords Passwords) *AUCard {
	return &AUCard{logger: logger, passwords: passwords}
}

func (p *AUCard) Name() string { return "au" }

func (p *AUCard) ExtractLines(path string) (*Extraction, error) {
	lines, err := pdfLines(path, p.passwords.Get("AU", ""))
	if err != nil {
		return nil, err
	}
	return p.parseLines(lines)
}

func (p *AUCard) parseLines(lines []string) (*Extraction, error) {
	ext := &Extraction{Currency: "INR"}

	var cardHolder, cardNumber string
	inTransactions := false
	var pending RawLine

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "Statement for your credit card ending with") {
			parts := strings.Fields(line)
			if len(parts) > 7 {
				cardNumber = strings.Trim(parts[7], "()")
			}
			if len(parts) >= 3 {
				ext.StatementDate = strings.Join(parts[len(parts)-3:], " ")
			}
			continue
		}
		if strings.HasPrefix(line, "Hello,") {
			cardHolder = strings.TrimSpace(strings.TrimPrefix(line, "Hello,"))
			continue
		}
		if strings.HasPrefix(line, "Your Transactions") {
			inTransactions = true
			continue
		}
		if strings.HasPrefix(line, "Reward Points you have earned this month") {
			inTransactions = false
			if block := parseAURewards(lines, ext.StatementDate, cardNumber, cardHolder); block != nil {
				ext.Rewards = append(ext.Rewards, *block)
			}
			continue
		}

		if !inTransactions {
			continue
		}

		// Line 1 of a group: free-text description.
		if pending.Description == "" {
			pending = RawLine{Description: line, Raw: line}
			continue
		}

		// Line 2: running index plus the ₹ amount.
		if strings.Contains(line, "₹") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				pending.Amount = strings.ReplaceAll(strings.TrimPrefix(parts[1], "₹"), ",", "")
			}
			pending.Raw += " | " + line
			continue
		}

		// Line 3: date, Dr/Cr marker, optional "123RP".
		if strings.Contains(line, "Dr") || strings.Contains(line, "Cr") {
			parts := strings.Fields(line)
			marker := len(parts)
			pending.Type = models.TypeCredit
			for i, part := range parts {
				if part == "Dr" || part == "Cr" {
					marker = i
				}
				if part == "Dr" {
					pending.Type = models.TypeDebit
				}
				if strings.HasSuffix(part, "RP") {
					pending.RewardPoints = strings.TrimSuffix(part, "RP")
				}
			}
			pending.Date = strings.Join(parts[:min(marker, 3)], " ")
			pending.Raw += " | " + line
			pending.CardNumber = cardNumber
			pending.CardHolder = cardHolder
			if pending.Amount != "" {
				ext.Lines = append(ext.Lines, pending)
			}
			pending = RawLine{}
		}
	}

	if len(ext.Lines) == 0 {
		return nil, ErrCannotParse
	}
	return ext, nil
}

// parseAURewards reads the labeled reward section. Earned and bonus points
// are merged into one earned figure to match the common reward schema.
func parseAURewards(lines []string, statementDate, cardNumber, cardHolder string) *RewardBlock {
	inSection := false
	var earned, bonus int
	block := &RewardBlock{
		StatementDate: statementDate,
		CardNumber:    cardNumber,
		CardHolder:    cardHolder,
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Reward Points you have earned this month") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "Fuel Surcharge") || strings.HasPrefix(line, "Page ") {
			break
		}

		switch {
		case strings.HasPrefix(line, "Opening balance"):
			block.OpeningBalance = auExtractInt(line)
		case strings.HasPrefix(line, "Earned +"):
			if v := auExtractInt(line); v != nil {
				earned = *v
			}
		case strings.HasPrefix(line, "Bonus Points"):
			if v := auExtractInt(line); v != nil {
				bonus = *v
			}
		case strings.HasPrefix(line, "Lapsed"):
			block.AdjustedLapsed = auExtractInt(line)
		case strings.HasPrefix(line, "Redeemed"):
			block.Redeemed = auExtractInt(line)
		case strings.HasPrefix(line, "Total reward points"):
			block.ClosingBalance = auExtractInt(line)
		}
	}

	if block.ClosingBalance == nil {
		return nil
	}
	if earned != 0 || bonus != 0 {
		total := earned + bonus
		block.Earned = &total
	}
	return block
}

func auExtractInt(line string) *int {
	m := auFirstInt.FindString(line)
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return nil
	}
	return &v
}
