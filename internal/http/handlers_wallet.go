package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"ehuza/internal/core"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

type walletFormData struct {
	Profile core.Profile
	Active  string

	Amount      string
	Description string
	Error       string
	Notice      string
	Balance     string
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleWalletForm(w, r, "deposit.html", "deposit", s.backend.Deposit)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleWalletForm(w, r, "withdraw.html", "withdraw", s.backend.Withdraw)
}

// handleWalletForm runs both money forms: validate the amount locally,
// submit to the backend, and on success invalidate every cache a balance
// change touches before confirming.
func (s *Server) handleWalletForm(
	w http.ResponseWriter,
	r *http.Request,
	tmpl, active string,
	action func(ctx context.Context, in wallet.TransactionInput) (wallet.ActionResult, error),
) {
	sess, _ := session.FromContext(r.Context())

	profile, err := s.getProfile(r.Context(), sess)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load profile", "session_id", sess.ID, "error", err)
		s.renderError(w, r, http.StatusBadGateway, "Could not load your profile. Please try again.")
		return
	}

	data := walletFormData{Profile: profile, Active: active}

	switch r.Method {
	case http.MethodGet:
		if balance, err := s.getBalance(r.Context(), sess); err == nil {
			data.Balance = balance.FormatWithCurrency()
		}
		s.render(w, r, tmpl, data)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		amount := strings.TrimSpace(r.FormValue("amount"))
		description := strings.TrimSpace(r.FormValue("description"))

		data.Amount = amount
		data.Description = description

		cents, err := core.ParseDecimalToCents(amount)
		if err != nil {
			data.Error = "Enter a positive amount, like 12.50."
			s.render(w, r, tmpl, data)
			return
		}
		if description == "" {
			data.Error = "A description is required."
			s.render(w, r, tmpl, data)
			return
		}

		res, err := action(r.Context(), wallet.TransactionInput{
			Amount:      core.Money{Cents: cents},
			Description: description,
		})
		if err != nil {
			data.Error = wallet.ErrorMessage(err, "The transaction could not be completed.")
			s.render(w, r, tmpl, data)
			return
		}
		if !res.Success {
			data.Error = res.Message
			if data.Error == "" {
				data.Error = "The transaction could not be completed."
			}
			s.render(w, r, tmpl, data)
			return
		}

		s.invalidateWalletCaches(sess)

		slog.InfoContext(r.Context(), "Wallet transaction completed",
			"session_id", sess.ID, "type", active, "amount_cents", cents)

		data.Amount = ""
		data.Description = ""
		data.Notice = "Done. Your balance has been updated."
		data.Balance = res.Balance.FormatWithCurrency()
		s.render(w, r, tmpl, data)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
