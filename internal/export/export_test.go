package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"ehuza/internal/core"
)

func TestRowsPreserveViewScope(t *testing.T) {
	at := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)
	txs := []core.Transaction{
		{ID: "t1", Type: core.Deposit, Description: "salary", Amount: core.Money{Cents: 50000}, CreatedAt: at},
		{ID: "t2", Type: core.Withdraw, Description: "rent", Amount: core.Money{Cents: 20000}, CreatedAt: at.Add(time.Hour)},
	}

	rows := Rows(txs)
	if len(rows) != len(txs) {
		t.Fatalf("row count %d must equal view count %d", len(rows), len(txs))
	}
	if rows[0].Date != "Mar 10, 2025 14:30" || rows[0].Amount != "500.00" || rows[0].Type != "deposit" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}

	if got := Rows(nil); len(got) != 0 {
		t.Fatalf("empty view must export zero rows, got %d", len(got))
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Date: "Mar 10, 2025 14:30", Description: "salary, march", Amount: "500.00", Type: "deposit"},
		{Date: "Mar 11, 2025 09:00", Description: "rent", Amount: "200.00", Type: "withdraw"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	for i, want := range Header {
		if records[0][i] != want {
			t.Fatalf("header column %d: expected %q, got %q", i, want, records[0][i])
		}
	}
	// Commas in descriptions must survive the round trip.
	if records[1][1] != "salary, march" {
		t.Fatalf("description mangled: %q", records[1][1])
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, time.August, 31, 10, 0, 0, 0, time.UTC)
	if got := Filename(at); got != "transactions-2025-08-31.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
