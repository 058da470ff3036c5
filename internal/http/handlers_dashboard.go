package http

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ehuza/internal/core"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

// chartPoint is one month bar of the monthly overview. Heights are
// percentages of the year's largest monthly sum so the tallest bar fills
// the chart.
type chartPoint struct {
	Label       string
	Deposit     string
	Withdraw    string
	DepositPct  int
	WithdrawPct int
}

type dashboardData struct {
	Profile       core.Profile
	Active        string
	Balance       string
	TotalDeposit  string
	TotalWithdraw string
	Latest        []txRow
	Chart         []chartPoint
	ChartEmpty    bool
	Error         string
}

// handleDashboard renders the landing page: balance and totals cards, the
// three most recent transactions, and the monthly chart. The three backend
// reads are independent, so they run concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, _ := session.FromContext(r.Context())

	profile, err := s.getProfile(r.Context(), sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load profile", "session_id", sess.ID, "error", err)
		s.renderError(w, r, http.StatusBadGateway, "Could not load your profile. Please try again.")
		return
	}

	var (
		balance core.Money
		history wallet.TransactionPage
		monthly []core.MonthlyPoint
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		balance, err = s.getBalance(ctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.getHistory(ctx, sess, 1)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = s.getMonthly(ctx, sess)
		return err
	})

	data := dashboardData{Profile: profile, Active: "dashboard"}

	if err := g.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to load dashboard data", "session_id", sess.ID, "error", err)
		data.Error = wallet.ErrorMessage(err, "Some of your data could not be loaded.")
		s.render(w, r, "dashboard.html", data)
		return
	}

	deposit, withdraw := core.Totals(history.Transactions)
	data.Balance = balance.FormatWithCurrency()
	data.TotalDeposit = deposit.FormatWithCurrency()
	data.TotalWithdraw = withdraw.FormatWithCurrency()
	data.Latest = txRows(core.LatestN(core.SortByDate(history.Transactions, false), 3))
	data.Chart, data.ChartEmpty = buildChart(monthly)

	s.render(w, r, "dashboard.html", data)
}

// handleDashboardCards re-renders the totals cards partial for HTMX refresh.
func (s *Server) handleDashboardCards(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	var (
		balance core.Money
		history wallet.TransactionPage
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		balance, err = s.getBalance(ctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.getHistory(ctx, sess, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(r.Context(), "Failed to load cards", "session_id", sess.ID, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	deposit, withdraw := core.Totals(history.Transactions)
	s.render(w, r, "dashboard_cards", dashboardData{
		Balance:       balance.FormatWithCurrency(),
		TotalDeposit:  deposit.FormatWithCurrency(),
		TotalWithdraw: withdraw.FormatWithCurrency(),
	})
}

// handleMonthlyChart re-renders the chart partial.
func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	monthly, err := s.getMonthly(r.Context(), sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load monthly summary", "session_id", sess.ID, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	chart, empty := buildChart(monthly)
	s.render(w, r, "monthly_chart", dashboardData{Chart: chart, ChartEmpty: empty})
}

// handleNotifications renders the three most recent transactions as the
// header notification list.
func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	history, err := s.getHistory(r.Context(), sess, 1)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load notifications", "session_id", sess.ID, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	latest := txRows(core.LatestN(core.SortByDate(history.Transactions, false), 3))
	s.render(w, r, "notifications", struct{ Latest []txRow }{Latest: latest})
}

// buildChart turns the backend summary into twelve bars with relative
// heights. Months the backend never mentions render as zero bars.
func buildChart(points []core.MonthlyPoint) ([]chartPoint, bool) {
	series := core.MonthlySeries(points)

	var max int64
	for _, p := range series {
		if p.Deposit.Cents > max {
			max = p.Deposit.Cents
		}
		if p.Withdraw.Cents > max {
			max = p.Withdraw.Cents
		}
	}

	chart := make([]chartPoint, 0, len(series))
	for i, p := range series {
		cp := chartPoint{
			Label:    time.Month(i + 1).String()[:3],
			Deposit:  p.Deposit.Format(),
			Withdraw: p.Withdraw.Format(),
		}
		if max > 0 {
			cp.DepositPct = int(p.Deposit.Cents * 100 / max)
			cp.WithdrawPct = int(p.Withdraw.Cents * 100 / max)
		}
		chart = append(chart, cp)
	}
	return chart, max == 0
}
