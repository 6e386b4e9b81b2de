package parser

import (
	"bufio"
	"os"
	"regexp"

	"github.com/charmbracelet/log"
)

// Rows that look like "date description amount". Covers the dash and
// slash day-first date shapes the issuers use; amount must close the line
// so balance columns don't get mistaken for amounts.
var genericRowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(\d{2}-\d{2}-\d{4})\s+(.+?)\s+(-?[\d,]+\.\d{2})$`),
	regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(.+?)\s+(-?[\d,]+\.\d{2})$`),
	regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+(.+?)\s+(-?[\d,]+\.\d{2})$`),
}

// Generic is the format-agnostic fallback: plain text extraction over the
// whole document and a regex sweep for date/description/amount triples.
// It never states a declared total.
type Generic struct {
	logger *log.Logger
}

func NewGeneric(logger *log.Logger) *Generic {
	return &Generic{logger: logger}
}

func (g *Generic) Name() string { return "generic" }

func (g *Generic) ExtractLines(path string) (*Extraction, error) {
	lines, err := pdfLines(path, "")
	if err != nil {
		// Not a PDF, or one this library cannot open. Text exports still
		// deserve the regex sweep.
		lines, err = textLines(path)
		if err != nil {
			return nil, err
		}
	}
	ext := &Extraction{Currency: "INR"}
	for _, line := range lines {
		for _, pattern := range genericRowPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			ext.Lines = append(ext.Lines, RawLine{
				Date:        m[1],
				Description: m[2],
				Amount:      m[3],
				Raw:         line,
			})
			break
		}
	}
	g.logger.Debug("generic extraction", "path", path, "rows", len(ext.Lines))
	return ext, nil
}

func textLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
