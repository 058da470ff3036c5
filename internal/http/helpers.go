package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"ehuza/internal/core"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

// generateRequestID creates a random request identifier for log correlation.
func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

// txViewParams are the user-controlled knobs on the transaction view:
// pagination, type checkboxes, free-text search, and sort direction.
type txViewParams struct {
	page   int
	query  string
	filter core.TypeFilter
	asc    bool
}

// parseTxViewParams reads view parameters from a query string. Unchecked
// HTML checkboxes are simply absent, so a hidden "f" field marks a submitted
// filter form; without it both type filters default to on.
func parseTxViewParams(q url.Values) txViewParams {
	p := txViewParams{
		page:   1,
		query:  q.Get("q"),
		filter: core.TypeFilter{Deposit: true, Withdraw: true},
	}

	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.page = n
	}
	if q.Get("f") != "" {
		p.filter.Deposit = q.Get("deposit") != ""
		p.filter.Withdraw = q.Get("withdraw") != ""
	}
	p.asc = q.Get("sort") == "asc"

	return p
}

// encode reproduces the query string for links that must carry the current
// view state (pager, export).
func (p txViewParams) encode(page int) string {
	q := url.Values{}
	q.Set("f", "1")
	q.Set("page", strconv.Itoa(page))
	if p.query != "" {
		q.Set("q", p.query)
	}
	if p.filter.Deposit {
		q.Set("deposit", "on")
	}
	if p.filter.Withdraw {
		q.Set("withdraw", "on")
	}
	if p.asc {
		q.Set("sort", "asc")
	} else {
		q.Set("sort", "desc")
	}
	return q.Encode()
}

// Cache keys are scoped per session so invalidation never crosses users.

func profileKey(sid string) string { return "profile:" + sid }
func balanceKey(sid string) string { return "balance:" + sid }
func monthlyKey(sid string) string { return "monthly:" + sid }

func historyKey(sid string, page int) string {
	return fmt.Sprintf("history:%s:%d", sid, page)
}

func historyPrefix(sid string) string { return "history:" + sid + ":" }

func (s *Server) getProfile(ctx context.Context, sess session.Session) (core.Profile, error) {
	if p, ok := s.profileCache.Get(profileKey(sess.ID)); ok {
		return p, nil
	}
	p, err := s.backend.Profile(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	s.profileCache.Set(profileKey(sess.ID), p)
	return p, nil
}

func (s *Server) getBalance(ctx context.Context, sess session.Session) (core.Money, error) {
	if b, ok := s.balanceCache.Get(balanceKey(sess.ID)); ok {
		return b, nil
	}
	b, err := s.backend.Balance(ctx)
	if err != nil {
		return core.Money{}, err
	}
	s.balanceCache.Set(balanceKey(sess.ID), b)
	return b, nil
}

func (s *Server) getHistory(ctx context.Context, sess session.Session, page int) (wallet.TransactionPage, error) {
	if h, ok := s.historyCache.Get(historyKey(sess.ID, page)); ok {
		return h, nil
	}
	h, err := s.backend.Transactions(ctx, page, s.pageSize)
	if err != nil {
		return wallet.TransactionPage{}, err
	}
	s.historyCache.Set(historyKey(sess.ID, page), h)
	return h, nil
}

func (s *Server) getMonthly(ctx context.Context, sess session.Session) ([]core.MonthlyPoint, error) {
	if m, ok := s.monthlyCache.Get(monthlyKey(sess.ID)); ok {
		return m, nil
	}
	m, err := s.backend.MonthlySummary(ctx)
	if err != nil {
		return nil, err
	}
	s.monthlyCache.Set(monthlyKey(sess.ID), m)
	return m, nil
}

// invalidateWalletCaches drops everything a balance mutation can change.
// Always called after a successful deposit or withdrawal, never skipped.
func (s *Server) invalidateWalletCaches(sess session.Session) {
	s.balanceCache.Delete(balanceKey(sess.ID))
	s.monthlyCache.Delete(monthlyKey(sess.ID))
	s.historyCache.DeletePrefix(historyPrefix(sess.ID))
}

// dropSessionCaches clears every per-session cache entry, used on logout.
func (s *Server) dropSessionCaches(sess session.Session) {
	s.profileCache.Delete(profileKey(sess.ID))
	s.invalidateWalletCaches(sess)
}
