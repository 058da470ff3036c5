// Package export turns the currently displayed transaction view into
// spreadsheet rows. The scope is always what is on screen: the filtered and
// sorted slice of the active page, never the full ledger.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"ehuza/internal/core"
)

// Header is the fixed column set of every export.
var Header = []string{"Date", "Description", "Amount", "Type"}

// Row is one exported transaction, already formatted for display.
type Row struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

// Rows converts a derived transaction view into export rows, preserving order.
func Rows(txs []core.Transaction) []Row {
	out := make([]Row, 0, len(txs))
	for _, tx := range txs {
		out = append(out, Row{
			Date:        core.FormatTimestamp(tx.CreatedAt),
			Description: tx.Description,
			Amount:      tx.Amount.Format(),
			Type:        string(tx.Type),
		})
	}
	return out
}

// WriteCSV writes header plus rows to w.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Date, r.Description, r.Amount, r.Type}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns the attachment name for a CSV download.
func Filename(now time.Time) string {
	return "transactions-" + now.Format("2006-01-02") + ".csv"
}
