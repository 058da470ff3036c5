package core

import (
	"sort"
	"strings"
	"time"
)

// DisplayTimeLayout is the layout used everywhere a transaction timestamp is
// shown to the user. The text filter matches against this same rendering, so
// searching for what is on screen always works.
const DisplayTimeLayout = "Jan 2, 2006 15:04"

// FormatTimestamp renders a transaction timestamp for display and search.
func FormatTimestamp(t time.Time) string {
	return t.Format(DisplayTimeLayout)
}

// TypeFilter holds the state of the deposit/withdraw checkboxes.
// Both disabled is a valid state and yields an empty view, not an error.
type TypeFilter struct {
	Deposit  bool
	Withdraw bool
}

func (f TypeFilter) matches(t TransactionType) bool {
	switch t {
	case Deposit:
		return f.Deposit
	case Withdraw:
		return f.Withdraw
	default:
		return false
	}
}

// FilterByType keeps transactions whose type checkbox is enabled.
func FilterByType(txs []Transaction, f TypeFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.matches(tx.Type) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterBySearch keeps transactions whose description or displayed timestamp
// contains the query, case-insensitively. An empty query keeps everything.
func FilterBySearch(txs []Transaction, query string) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]Transaction, len(txs))
		copy(out, txs)
		return out
	}
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if strings.Contains(strings.ToLower(tx.Description), q) ||
			strings.Contains(strings.ToLower(FormatTimestamp(tx.CreatedAt)), q) {
			out = append(out, tx)
		}
	}
	return out
}

// SortByDate returns a copy ordered by CreatedAt. The sort is stable so equal
// timestamps keep their input order, and toggling the direction twice restores
// the original ordering exactly.
func SortByDate(txs []Transaction, ascending bool) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ApplyView runs the full derivation pipeline over one fetched page:
// type filter, then text filter, then stable date sort.
func ApplyView(txs []Transaction, f TypeFilter, query string, ascending bool) []Transaction {
	return SortByDate(FilterBySearch(FilterByType(txs, f), query), ascending)
}

// Totals reduces the given set into per-type sums. Callers pass whatever
// page is currently loaded; the summary is scoped to that page on purpose.
func Totals(txs []Transaction) (deposit, withdraw Money) {
	for _, tx := range txs {
		switch tx.Type {
		case Deposit:
			deposit = deposit.Add(tx.Amount)
		case Withdraw:
			withdraw = withdraw.Add(tx.Amount)
		}
	}
	return deposit, withdraw
}

// MonthlySeries expands sparse per-month aggregates into a full 12-point
// series with zeroes for months that had no activity. Out-of-range months
// are dropped.
func MonthlySeries(points []MonthlyPoint) [12]MonthlyPoint {
	var series [12]MonthlyPoint
	for i := range series {
		series[i].Month = i + 1
	}
	for _, p := range points {
		if p.Month < 1 || p.Month > 12 {
			continue
		}
		series[p.Month-1].Deposit = p.Deposit
		series[p.Month-1].Withdraw = p.Withdraw
	}
	return series
}

// LatestN returns the n most recent transactions, newest first.
// Used by the notifications popover; a pure projection with no state.
func LatestN(txs []Transaction, n int) []Transaction {
	sorted := SortByDate(txs, false)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
