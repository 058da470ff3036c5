package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ehuza/internal/amqp"
	"ehuza/internal/core"
	"ehuza/internal/export"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

// txRow is one rendered history line.
type txRow struct {
	ID          string
	Date        string
	Description string
	Amount      string
	Type        string
	IsDeposit   bool
}

func txRows(txs []core.Transaction) []txRow {
	rows := make([]txRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, txRow{
			ID:          tx.ID,
			Date:        core.FormatTimestamp(tx.CreatedAt),
			Description: tx.Description,
			Amount:      tx.Amount.FormatWithCurrency(),
			Type:        string(tx.Type),
			IsDeposit:   tx.Type == core.Deposit,
		})
	}
	return rows
}

type transactionsData struct {
	Profile core.Profile
	Active  string
	Error   string

	Rows    []txRow
	Total   int
	Showing int

	Query    string
	Deposit  bool
	Withdraw bool
	SortAsc  bool

	Page         int
	TotalPages   int
	PrevDisabled bool
	NextDisabled bool
	PrevQuery    string
	NextQuery    string
	ExportQuery  string

	SheetsEnabled bool
	SheetsNotice  string
}

// loadTransactionView fetches one history page and applies the user's view:
// type filter, then text search, then sort. Filtering is within the current
// server page; the pager always reflects the backend's page count.
func (s *Server) loadTransactionView(r *http.Request, sess session.Session, p txViewParams) (transactionsData, error) {
	history, err := s.getHistory(r.Context(), sess, p.page)
	if err != nil {
		return transactionsData{}, err
	}

	view := core.ApplyView(history.Transactions, p.filter, p.query, p.asc)

	data := transactionsData{
		Rows:    txRows(view),
		Total:   history.Total,
		Showing: len(view),

		Query:    p.query,
		Deposit:  p.filter.Deposit,
		Withdraw: p.filter.Withdraw,
		SortAsc:  p.asc,

		Page:         history.Page,
		TotalPages:   history.TotalPages,
		PrevDisabled: history.Page <= 1,
		NextDisabled: history.Page >= history.TotalPages,
		PrevQuery:    p.encode(history.Page - 1),
		NextQuery:    p.encode(history.Page + 1),
		ExportQuery:  p.encode(history.Page),

		SheetsEnabled: s.exports != nil,
	}
	return data, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
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

	p := parseTxViewParams(r.URL.Query())
	data, err := s.loadTransactionView(r, sess, p)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions", "session_id", sess.ID, "page", p.page, "error", err)
		data = transactionsData{
			Error:    wallet.ErrorMessage(err, "Could not load your transactions."),
			Deposit:  p.filter.Deposit,
			Withdraw: p.filter.Withdraw,
			Query:    p.query,
			Page:     p.page,
		}
	}
	data.Profile = profile
	data.Active = "transactions"
	if r.URL.Query().Get("notice") == "exported" {
		data.SheetsNotice = "Export queued. Your sheet will update shortly."
	}

	s.render(w, r, "transactions.html", data)
}

// handleTransactionsTable serves the table partial for HTMX-driven filter,
// search, sort, and pager interactions.
func (s *Server) handleTransactionsTable(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	p := parseTxViewParams(r.URL.Query())
	data, err := s.loadTransactionView(r, sess, p)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions partial", "session_id", sess.ID, "page", p.page, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	s.render(w, r, "transactions_table", data)
}

// currentViewRows resolves the exact rows the user is looking at, with the
// same filter, search, and sort applied.
func (s *Server) currentViewRows(r *http.Request, sess session.Session) ([]core.Transaction, error) {
	p := parseTxViewParams(r.URL.Query())
	history, err := s.getHistory(r.Context(), sess, p.page)
	if err != nil {
		return nil, err
	}
	return core.ApplyView(history.Transactions, p.filter, p.query, p.asc), nil
}

// handleExportCSV downloads the current view as a CSV file.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, _ := session.FromContext(r.Context())

	view, err := s.currentViewRows(r, sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for export", "session_id", sess.ID, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
	if err := export.WriteCSV(w, export.Rows(view)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV export", "session_id", sess.ID, "error", err)
	}
}

// handleExportSheets queues the current view for the spreadsheet worker.
func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.exports == nil {
		http.Error(w, "sheet export is not configured", http.StatusNotImplemented)
		return
	}

	sess, _ := session.FromContext(r.Context())

	view, err := s.currentViewRows(r, sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load transactions for sheet export", "session_id", sess.ID, "error", err)
		http.Error(w, "could not load data", http.StatusBadGateway)
		return
	}

	msg := amqp.NewExportRequestMessage(sess.UserID, export.Rows(view))
	if err := s.exports.PublishExportRequest(r.Context(), msg); err != nil {
		slog.ErrorContext(r.Context(), "Failed to publish export request",
			"session_id", sess.ID, "request_id", msg.RequestID, "error", err)
		http.Error(w, "could not queue the export", http.StatusBadGateway)
		return
	}

	slog.InfoContext(r.Context(), "Export request queued",
		"session_id", sess.ID, "request_id", msg.RequestID, "rows", len(msg.Rows))

	back := "/transactions?notice=exported"
	if q := r.URL.RawQuery; q != "" {
		back = "/transactions?" + q + "&notice=exported"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
