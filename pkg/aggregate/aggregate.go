// Package aggregate folds stored transactions into spending summaries.
// Grouping is a composite key over one or more dimensions, and currency
// is always part of it: amounts in different currencies are never added
// together, they become separate rows.
package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold/billfold/pkg/models"
)

// Dimension selects what transactions are grouped by.
type Dimension string

const (
	ByMonth    Dimension = "month"
	ByQuarter  Dimension = "quarter"
	ByCard     Dimension = "card"
	ByCategory Dimension = "category"
)

// ParseDimension maps one flag token to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case ByMonth, ByQuarter, ByCard, ByCategory:
		return Dimension(s), nil
	}
	return "", fmt.Errorf("unknown group dimension %q (want month, quarter, card or category)", s)
}

// ParseDimensions maps a comma-separated flag value like "month,category"
// to an ordered dimension list.
func ParseDimensions(s string) ([]Dimension, error) {
	var dims []Dimension
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := ParseDimension(part)
		if err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("no group dimension given")
	}
	return dims, nil
}

// Row is one group in a summary table. Keys holds one value per requested
// dimension, in the order the dimensions were given.
type Row struct {
	Keys     []string
	Currency string
	Count    int
	Debits   decimal.Decimal
	Credits  decimal.Decimal
	Total    decimal.Decimal
}

// Table is an aggregation result with deterministic row order.
type Table struct {
	GroupBy []Dimension
	Rows    []Row
}

// Aggregate groups the transactions along the given dimensions; requesting
// several builds a composite key. The date range is half-open: from
// inclusive, to exclusive; nil means unbounded.
func Aggregate(txs []models.Transaction, groupBy []Dimension, from, to *time.Time) (*Table, error) {
	if len(groupBy) == 0 {
		return nil, fmt.Errorf("no group dimension given")
	}
	for _, d := range groupBy {
		if _, err := ParseDimension(string(d)); err != nil {
			return nil, err
		}
	}

	buckets := make(map[string]*Row)
	for _, tx := range txs {
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		if to != nil && !tx.Date.Before(*to) {
			continue
		}
		keys := make([]string, len(groupBy))
		for i, d := range groupBy {
			keys[i] = groupKey(tx, d)
		}
		id := strings.Join(keys, "\x1f") + "\x1f" + tx.Currency
		row, ok := buckets[id]
		if !ok {
			row = &Row{Keys: keys, Currency: tx.Currency}
			buckets[id] = row
		}
		row.Count++
		row.Total = row.Total.Add(tx.Amount)
		if tx.Amount.IsNegative() {
			row.Debits = row.Debits.Add(tx.Amount)
		} else {
			row.Credits = row.Credits.Add(tx.Amount)
		}
	}

	table := &Table{GroupBy: groupBy, Rows: make([]Row, 0, len(buckets))}
	for _, row := range buckets {
		table.Rows = append(table.Rows, *row)
	}
	sort.Slice(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i], table.Rows[j]
		for k := range a.Keys {
			if a.Keys[k] != b.Keys[k] {
				return a.Keys[k] < b.Keys[k]
			}
		}
		return a.Currency < b.Currency
	})
	return table, nil
}

func groupKey(tx models.Transaction, groupBy Dimension) string {
	switch groupBy {
	case ByMonth:
		return tx.Date.Format("2006-01")
	case ByQuarter:
		return fmt.Sprintf("%d-Q%d", tx.Date.Year(), (int(tx.Date.Month())-1)/3+1)
	case ByCard:
		if tx.CardNumber == "" {
			return "unknown"
		}
		return tx.CardNumber
	case ByCategory:
		if tx.Category == "" {
			return "uncategorized"
		}
		return tx.Category
	}
	return ""
}

// WriteCSV renders the table for spreadsheet import, one column per
// grouping dimension.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(t.GroupBy)+5)
	for _, d := range t.GroupBy {
		header = append(header, string(d))
	}
	header = append(header, "currency", "count", "debits", "credits", "total")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Keys...)
		record = append(record,
			row.Currency,
			strconv.Itoa(row.Count),
			row.Debits.String(),
			row.Credits.String(),
			row.Total.String(),
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
