package parser

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfLines extracts the text of every page as layout-ordered lines.
// Row grouping first tries the library's own row detection, then falls
// back to coordinate-based reconstruction for statements whose text
// objects are emitted out of order.
func pdfLines(path, password string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	var reader *pdf.Reader
	if password != "" {
		reader, err = pdf.NewReaderEncrypted(f, info.Size(), func() string { return password })
	} else {
		reader, err = pdf.NewReader(f, info.Size())
	}
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageLines := linesByRow(page)
		if len(pageLines) == 0 {
			pageLines = linesByContent(page)
		}
		lines = append(lines, pageLines...)
	}
	return lines, nil
}

func linesByRow(page pdf.Page) []string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// linesByContent groups raw text objects by Y coordinate (PDF Y runs
// bottom-to-top) and orders each row left to right.
func linesByContent(page pdf.Page) []string {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	type item struct {
		x float64
		s string
	}
	rowMap := make(map[int][]item)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		y := int(math.Round(t.Y))
		rowMap[y] = append(rowMap[y], item{x: t.X, s: t.S})
	}

	ys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var lines []string
	for _, y := range ys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

		var b strings.Builder
		var prevX float64
		for j, it := range items {
			if j > 0 && it.x-prevX > 15 {
				b.WriteString("  ")
			} else if j > 0 {
				b.WriteString(" ")
			}
			b.WriteString(it.s)
			prevX = it.x
		}
		line := strings.TrimSpace(b.String())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
