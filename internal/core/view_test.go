package core

import (
	"testing"
	"time"
)

func tx(id string, typ TransactionType, desc string, cents int64, at time.Time) Transaction {
	return Transaction{ID: id, Type: typ, Description: desc, Amount: Money{Cents: cents}, CreatedAt: at}
}

func sampleTxs() []Transaction {
	base := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)
	return []Transaction{
		tx("t1", Deposit, "salary", 50000, base),
		tx("t2", Withdraw, "rent", 20000, base.Add(24*time.Hour)),
		tx("t3", Deposit, "refund", 1500, base.Add(48*time.Hour)),
		tx("t4", Withdraw, "groceries", 3200, base.Add(48*time.Hour)),
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterByType(t *testing.T) {
	txs := sampleTxs()
	cases := []struct {
		name   string
		filter TypeFilter
		want   []string
	}{
		{"both enabled", TypeFilter{Deposit: true, Withdraw: true}, []string{"t1", "t2", "t3", "t4"}},
		{"deposits only", TypeFilter{Deposit: true}, []string{"t1", "t3"}},
		{"withdraws only", TypeFilter{Withdraw: true}, []string{"t2", "t4"}},
		{"both disabled yields empty set", TypeFilter{}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByType(txs, tc.filter)
			if !equalIDs(ids(got), tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, ids(got))
			}
		})
	}
}

func TestFilterBySearch(t *testing.T) {
	txs := sampleTxs()
	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"t1", "t2", "t3", "t4"}},
		{"SALARY", []string{"t1"}},
		{"r", []string{"t1", "t2", "t3", "t4"}}, // matches descriptions and "Mar"
		{"groc", []string{"t4"}},
		{"mar 11", []string{"t2"}}, // formatted date substring
		{"no such thing", []string{}},
	}
	for _, tc := range cases {
		got := FilterBySearch(txs, tc.query)
		if !equalIDs(ids(got), tc.want) {
			t.Fatalf("query %q: expected %v, got %v", tc.query, tc.want, ids(got))
		}
		// Result must always be a subset of the input.
		if len(got) > len(txs) {
			t.Fatalf("query %q: result larger than input", tc.query)
		}
	}
}

func TestSortByDateStable(t *testing.T) {
	txs := sampleTxs()

	asc := SortByDate(txs, true)
	if !equalIDs(ids(asc), []string{"t1", "t2", "t3", "t4"}) {
		t.Fatalf("ascending: got %v", ids(asc))
	}

	// t3 and t4 share a timestamp; stable sort keeps input order in both
	// directions, so descending is the exact reverse of ascending here
	// except for the tied pair, which keeps t3 before t4.
	desc := SortByDate(txs, false)
	if !equalIDs(ids(desc), []string{"t3", "t4", "t2", "t1"}) {
		t.Fatalf("descending: got %v", ids(desc))
	}

	// Input must not be mutated.
	if !equalIDs(ids(txs), []string{"t1", "t2", "t3", "t4"}) {
		t.Fatalf("input mutated: %v", ids(txs))
	}
}

func TestApplyView(t *testing.T) {
	txs := sampleTxs()
	got := ApplyView(txs, TypeFilter{Deposit: true, Withdraw: true}, "r", false)
	if !equalIDs(ids(got), []string{"t3", "t4", "t2", "t1"}) {
		t.Fatalf("got %v", ids(got))
	}

	got = ApplyView(txs, TypeFilter{Withdraw: true}, "rent", true)
	if !equalIDs(ids(got), []string{"t2"}) {
		t.Fatalf("got %v", ids(got))
	}
}

func TestTotals(t *testing.T) {
	deposit, withdraw := Totals(sampleTxs())
	if deposit.Cents != 51500 {
		t.Fatalf("deposit total: expected 51500, got %d", deposit.Cents)
	}
	if withdraw.Cents != 23200 {
		t.Fatalf("withdraw total: expected 23200, got %d", withdraw.Cents)
	}

	deposit, withdraw = Totals(nil)
	if deposit.Cents != 0 || withdraw.Cents != 0 {
		t.Fatalf("empty set should produce zero totals")
	}
}

func TestMonthlySeriesZeroFills(t *testing.T) {
	series := MonthlySeries([]MonthlyPoint{
		{Month: 3, Deposit: Money{Cents: 1000}, Withdraw: Money{Cents: 500}},
		{Month: 7, Deposit: Money{Cents: 2000}},
		{Month: 13, Deposit: Money{Cents: 9999}}, // out of range, dropped
	})

	if len(series) != 12 {
		t.Fatalf("expected 12 points, got %d", len(series))
	}
	zeros := 0
	for i, p := range series {
		if p.Month != i+1 {
			t.Fatalf("point %d has month %d", i, p.Month)
		}
		if p.Deposit.Cents == 0 && p.Withdraw.Cents == 0 {
			zeros++
		}
	}
	if zeros != 10 {
		t.Fatalf("expected 10 zero-valued months, got %d", zeros)
	}
	if series[2].Deposit.Cents != 1000 || series[2].Withdraw.Cents != 500 {
		t.Fatalf("march not filled: %+v", series[2])
	}
	if series[6].Deposit.Cents != 2000 {
		t.Fatalf("july not filled: %+v", series[6])
	}
}

func TestLatestN(t *testing.T) {
	got := LatestN(sampleTxs(), 3)
	if !equalIDs(ids(got), []string{"t3", "t4", "t2"}) {
		t.Fatalf("got %v", ids(got))
	}
	if got := LatestN(nil, 3); len(got) != 0 {
		t.Fatalf("expected empty, got %v", ids(got))
	}
}

func TestValidateTransactions(t *testing.T) {
	txs := sampleTxs()
	if err := ValidateTransactions(txs); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	dup := append(append([]Transaction{}, txs...), txs[0])
	if err := ValidateTransactions(dup); err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	bad := []Transaction{tx("", Deposit, "x", 100, time.Now())}
	if err := ValidateTransactions(bad); err != ErrEmptyTransactionID {
		t.Fatalf("expected ErrEmptyTransactionID, got %v", err)
	}

	bad = []Transaction{tx("t9", "transfer", "x", 100, time.Now())}
	if err := ValidateTransactions(bad); err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}
