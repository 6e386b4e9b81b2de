package quarantine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold/billfold/pkg/models"
)

func TestRowLogAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unparsed.csv")
	log := NewRowLog(path)

	if err := log.AppendRow(Row{ImportID: "imp-1", Raw: "05/01/2024 SHOP N/A", Reason: "bad amount"}); err != nil {
		t.Fatal(err)
	}
	if err := log.AppendRow(Row{ImportID: "imp-2", Raw: "garbage", Reason: "bad date"}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus both entries: appends never overwrite.
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0][0] != "importId" {
		t.Errorf("missing header: %v", records[0])
	}
	if records[1][2] != "bad amount" || records[2][2] != "bad date" {
		t.Errorf("unexpected rows: %v", records[1:])
	}
}

func TestReviewLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.csv")
	log := NewReviewLog(path)

	tx := models.Transaction{
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Merchant:    "MYSTERY SHOP",
		Description: "MYSTERY SHOP 42",
		Amount:      decimal.RequireFromString("-500.00"),
		Currency:    "INR",
		ImportID:    "imp-1",
	}
	if err := log.AppendReview(tx); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if records[1][0] != "2024-01-05" || records[1][1] != "MYSTERY SHOP" {
		t.Errorf("unexpected review row: %v", records[1])
	}
}
