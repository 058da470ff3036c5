// Package memory is an in-memory stand-in for the wallet backend, used by
// tests and local development when no real backend is reachable. It keeps the
// same contract as the HTTP adapter: simple balance arithmetic, an
// append-only transaction list, opaque bearer tokens.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ehuza/internal/core"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

type user struct {
	id        string
	name      string
	email     string
	password  string
	imageURL  string
	createdAt time.Time
	balance   core.Money
	txs       []core.Transaction
}

type Store struct {
	mu          sync.Mutex
	usersByID   map[string]*user
	userByEmail map[string]*user
	tokens      map[string]string // bearer token -> user id
	resetTokens map[string]string // reset token -> user id
	now         func() time.Time
}

var _ wallet.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		usersByID:   make(map[string]*user),
		userByEmail: make(map[string]*user),
		tokens:      make(map[string]string),
		resetTokens: make(map[string]string),
		now:         time.Now,
	}
}

// SetClock overrides the time source, for deterministic tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func apiErr(status int, format string, args ...any) error {
	return &wallet.APIError{StatusCode: status, Message: fmt.Sprintf(format, args...)}
}

func (s *Store) Register(_ context.Context, in wallet.RegisterInput) (wallet.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" || in.Password == "" {
		return wallet.AuthResult{}, apiErr(http.StatusBadRequest, "All fields are required")
	}
	if _, exists := s.userByEmail[email]; exists {
		return wallet.AuthResult{}, apiErr(http.StatusConflict, "Email already registered")
	}

	u := &user{
		id:        uuid.NewString(),
		name:      in.Name,
		email:     email,
		password:  in.Password,
		createdAt: s.now(),
	}
	s.usersByID[u.id] = u
	s.userByEmail[email] = u

	return wallet.AuthResult{Success: true, Message: "Registration successful", UserID: u.id}, nil
}

func (s *Store) Login(_ context.Context, in wallet.LoginInput) (wallet.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail[strings.ToLower(strings.TrimSpace(in.Email))]
	if !ok || u.password != in.Password {
		return wallet.AuthResult{}, apiErr(http.StatusUnauthorized, "Invalid email or password")
	}

	token := uuid.NewString()
	s.tokens[token] = u.id

	return wallet.AuthResult{Success: true, Message: "Login successful", Token: token, UserID: u.id}, nil
}

func (s *Store) RequestPasswordReset(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		// Same message either way, as a real backend would do.
		return "If the email exists, a reset link has been sent", nil
	}
	s.resetTokens[uuid.NewString()] = u.id
	return "If the email exists, a reset link has been sent", nil
}

func (s *Store) ResetPassword(_ context.Context, token, newPassword string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.resetTokens[token]
	if !ok {
		return "", apiErr(http.StatusBadRequest, "Invalid or expired reset token")
	}
	if newPassword == "" {
		return "", apiErr(http.StatusBadRequest, "Password is required")
	}
	s.usersByID[userID].password = newPassword
	delete(s.resetTokens, token)
	return "Password has been reset", nil
}

// IssueResetToken mints a reset token directly, so tests and local dev can
// exercise the reset form without a mail flow.
func (s *Store) IssueResetToken(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.userByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return "", false
	}
	token := uuid.NewString()
	s.resetTokens[token] = u.id
	return token, true
}

func (s *Store) currentUser(ctx context.Context) (*user, error) {
	token, ok := session.TokenFromContext(ctx)
	if !ok {
		return nil, apiErr(http.StatusUnauthorized, "Authorization token missing")
	}
	userID, ok := s.tokens[token]
	if !ok {
		return nil, apiErr(http.StatusUnauthorized, "Invalid token")
	}
	return s.usersByID[userID], nil
}

func (s *Store) Profile(ctx context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	return core.Profile{
		UserID:    u.id,
		Name:      u.name,
		Email:     u.email,
		ImageURL:  u.imageURL,
		CreatedAt: u.createdAt,
	}, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p wallet.UpdateProfilePayload) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	if p.Name != "" {
		u.name = p.Name
	}
	if p.Email != "" {
		delete(s.userByEmail, u.email)
		u.email = strings.ToLower(strings.TrimSpace(p.Email))
		s.userByEmail[u.email] = u
	}
	if p.HasPassword() {
		u.password = *p.Password
	}
	if p.HasImage() {
		u.imageURL = "/uploads/" + u.id + "/" + p.Image.Filename
	}
	return core.Profile{
		UserID:    u.id,
		Name:      u.name,
		Email:     u.email,
		ImageURL:  u.imageURL,
		CreatedAt: u.createdAt,
	}, nil
}

func (s *Store) Balance(ctx context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return u.balance, nil
}

func (s *Store) Deposit(ctx context.Context, in wallet.TransactionInput) (wallet.ActionResult, error) {
	return s.apply(ctx, core.Deposit, in)
}

func (s *Store) Withdraw(ctx context.Context, in wallet.TransactionInput) (wallet.ActionResult, error) {
	return s.apply(ctx, core.Withdraw, in)
}

func (s *Store) apply(ctx context.Context, typ core.TransactionType, in wallet.TransactionInput) (wallet.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return wallet.ActionResult{}, err
	}
	if err := in.Amount.Validate(); err != nil {
		return wallet.ActionResult{}, apiErr(http.StatusBadRequest, "Amount must be greater than zero")
	}
	if strings.TrimSpace(in.Description) == "" {
		return wallet.ActionResult{}, apiErr(http.StatusBadRequest, "Description is required")
	}
	if typ == core.Withdraw && in.Amount.Cents > u.balance.Cents {
		return wallet.ActionResult{}, apiErr(http.StatusBadRequest, "Insufficient balance")
	}

	if typ == core.Deposit {
		u.balance = u.balance.Add(in.Amount)
	} else {
		u.balance = u.balance.Add(core.Money{Cents: -in.Amount.Cents})
	}
	u.txs = append(u.txs, core.Transaction{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Type:        typ,
		Description: in.Description,
		CreatedAt:   s.now(),
	})

	message := "Deposit successful"
	if typ == core.Withdraw {
		message = "Withdrawal successful"
	}
	return wallet.ActionResult{Success: true, Message: message, Balance: u.balance}, nil
}

func (s *Store) Transactions(ctx context.Context, page, limit int) (wallet.TransactionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return wallet.TransactionPage{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	// Ledger pages are served newest first, like the real backend.
	all := make([]core.Transaction, len(u.txs))
	copy(all, u.txs)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return wallet.TransactionPage{
		Transactions: all[start:end],
		Total:        total,
		Page:         page,
		TotalPages:   totalPages,
	}, nil
}

func (s *Store) MonthlySummary(ctx context.Context) ([]core.MonthlyPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	byMonth := map[int]*core.MonthlyPoint{}
	year := s.now().Year()
	for _, tx := range u.txs {
		if tx.CreatedAt.Year() != year {
			continue
		}
		m := int(tx.CreatedAt.Month())
		p, ok := byMonth[m]
		if !ok {
			p = &core.MonthlyPoint{Month: m}
			byMonth[m] = p
		}
		switch tx.Type {
		case core.Deposit:
			p.Deposit = p.Deposit.Add(tx.Amount)
		case core.Withdraw:
			p.Withdraw = p.Withdraw.Add(tx.Amount)
		}
	}

	points := make([]core.MonthlyPoint, 0, len(byMonth))
	for m := 1; m <= 12; m++ {
		if p, ok := byMonth[m]; ok {
			points = append(points, *p)
		}
	}
	return points, nil
}
