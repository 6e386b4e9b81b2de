package parser

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/extrame/xls"

	"github.com/billfold/billfold/pkg/models"
)

var axisCardPattern = regexp.MustCompile(`(?i)card (?:no|number)[:.]?\s*([X\d ]+\d{4})`)

// AxisXLS parses Axis Bank statements distributed as XLS worksheets:
// a header block with the card number, then a "Tran Date" table with
// separate debit and credit columns and a closing total row.
type AxisXLS struct {
	logger *log.Logger
}

func NewAxisXLS(logger *log.Logger) *AxisXLS {
	return &AxisXLS{logger: logger}
}

func (p *AxisXLS) Name() string { return "axis_xls" }

func (p *AxisXLS) ExtractLines(path string) (*Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xls: %w", err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	rows := workbook.ReadAllCells(1000)
	if len(rows) == 0 {
		return nil, ErrCannotParse
	}

	ext := &Extraction{Currency: "INR"}
	var cardNumber string
	inTable := false

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])

		if m := axisCardPattern.FindStringSubmatch(strings.Join(row, " ")); m != nil && cardNumber == "" {
			cardNumber = strings.TrimSpace(m[1])
			continue
		}

		if strings.EqualFold(first, "Tran Date") {
			inTable = true
			continue
		}
		if !inTable || len(row) < 4 {
			continue
		}

		debit := strings.TrimSpace(row[2])
		credit := strings.TrimSpace(row[3])

		if strings.Contains(strings.ToLower(first), "total") {
			if debit != "" {
				ext.DeclaredTotal = "-" + debit
			}
			continue
		}
		if first == "" {
			continue
		}

		line := RawLine{
			Date:        first,
			Description: strings.TrimSpace(row[1]),
			CardNumber:  cardNumber,
			Raw:         strings.Join(row, " | "),
		}
		switch {
		case debit != "":
			line.Amount = debit
			line.Type = models.TypeDebit
		case credit != "":
			line.Amount = credit
			line.Type = models.TypeCredit
		default:
			continue
		}
		ext.Lines = append(ext.Lines, line)
	}

	if len(ext.Lines) == 0 {
		return nil, ErrCannotParse
	}
	p.logger.Debug("axis xls extraction", "path", path, "rows", len(ext.Lines))
	return ext, nil
}
