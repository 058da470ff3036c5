package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ehuza/internal/session"
	"ehuza/internal/wallet"
	"ehuza/internal/wallet/memory"
)

type testEnv struct {
	srv      *Server
	backend  *memory.Store
	sessions *session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	backend := memory.New()
	srv := NewServer(":0", backend, sessions, nil, 10)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return &testEnv{srv: srv, backend: backend, sessions: sessions}
}

// signUp registers and logs a user in directly against the backend and
// returns a session cookie for requests.
func (e *testEnv) signUp(t *testing.T, name, email, password string) *http.Cookie {
	t.Helper()

	ctx := context.Background()
	if _, err := e.backend.Register(ctx, wallet.RegisterInput{Name: name, Email: email, Password: password}); err != nil {
		t.Fatalf("register: %v", err)
	}
	res, err := e.backend.Login(ctx, wallet.LoginInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sess, err := e.sessions.Create(ctx, res.Token, res.UserID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: sess.ID}
}

func (e *testEnv) do(t *testing.T, method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	ctx := context.Background()
	if _, err := env.backend.Register(ctx, wallet.RegisterInput{Name: "Aline", Email: "aline@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"aline@example.com"},
		"password": {"secret1"},
	}, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("redirect = %q, want /dashboard", loc)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a session cookie after login")
	}
}

func TestLoginRequiresFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/login", url.Values{"email": {""}, "password": {""}}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Email and password are required.") {
		t.Fatal("expected the validation message on the page")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"nope"},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Fatal("expected the backend message on the page")
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", url.Values{
		"name":             {"Aline"},
		"email":            {"aline@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret2"},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Passwords do not match.") {
		t.Fatal("expected the mismatch message")
	}
	// Submitted values are preserved.
	if !strings.Contains(body, `value="aline@example.com"`) {
		t.Fatal("expected the email to be echoed back")
	}
}

func TestRegisterRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/register", url.Values{
		"name":             {"Aline"},
		"email":            {"aline@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?notice=registered" {
		t.Fatalf("redirect = %q", loc)
	}
}

func TestRequireSessionRedirects(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/dashboard", "/transactions", "/deposit", "/withdraw", "/profile"} {
		rec := env.do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s: status = %d, want %d", path, rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s: redirect = %q, want /login", path, loc)
		}
	}
}

func TestDashboardRenders(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	rec := env.do(t, http.MethodGet, "/dashboard", nil, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "0.00 RWF") {
		t.Fatal("expected a zero balance on a fresh account")
	}
	if !strings.Contains(body, "Aline") {
		t.Fatal("expected the user name in the header")
	}
}

func TestDepositUpdatesBalance(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	// Warm the balance cache first.
	if rec := env.do(t, http.MethodGet, "/dashboard", nil, cookie); rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/deposit", url.Values{
		"amount":      {"25.50"},
		"description": {"Salary"},
	}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Your balance has been updated.") {
		t.Fatal("expected the success notice")
	}

	// The cached dashboard data must have been invalidated.
	rec = env.do(t, http.MethodGet, "/dashboard", nil, cookie)
	if !strings.Contains(rec.Body.String(), "25.50 RWF") {
		t.Fatal("expected the new balance after the deposit")
	}
}

func TestDepositRejectsBadAmount(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	for _, amount := range []string{"", "abc", "-5", "0"} {
		rec := env.do(t, http.MethodPost, "/deposit", url.Values{
			"amount":      {amount},
			"description": {"Test"},
		}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("amount %q: status = %d", amount, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Enter a positive amount") {
			t.Fatalf("amount %q: expected the validation message", amount)
		}
	}
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	rec := env.do(t, http.MethodPost, "/withdraw", url.Values{
		"amount":      {"10.00"},
		"description": {"Rent"},
	}, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Insufficient balance") {
		t.Fatalf("expected the backend message, got: %s", rec.Body.String())
	}
}

func TestTransactionsPage(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	env.do(t, http.MethodPost, "/deposit", url.Values{"amount": {"100"}, "description": {"Salary"}}, cookie)
	env.do(t, http.MethodPost, "/withdraw", url.Values{"amount": {"40"}, "description": {"Rent"}}, cookie)

	rec := env.do(t, http.MethodGet, "/transactions", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Salary") || !strings.Contains(body, "Rent") {
		t.Fatal("expected both transactions on the page")
	}
	if !strings.Contains(body, "Showing 2 of 2 transactions") {
		t.Fatal("expected the view count line")
	}
}

func TestTransactionsTypeFilter(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	env.do(t, http.MethodPost, "/deposit", url.Values{"amount": {"100"}, "description": {"Salary"}}, cookie)
	env.do(t, http.MethodPost, "/withdraw", url.Values{"amount": {"40"}, "description": {"Rent"}}, cookie)

	// Only deposits checked.
	rec := env.do(t, http.MethodGet, "/ui/transactions-table?f=1&deposit=on", nil, cookie)
	body := rec.Body.String()
	if !strings.Contains(body, "Salary") {
		t.Fatal("expected the deposit row")
	}
	if strings.Contains(body, "Rent") {
		t.Fatal("withdrawal row should be filtered out")
	}

	// Both unchecked shows nothing.
	rec = env.do(t, http.MethodGet, "/ui/transactions-table?f=1", nil, cookie)
	if !strings.Contains(rec.Body.String(), "Nothing matches this view.") {
		t.Fatal("expected the empty state with both filters off")
	}
}

func TestTransactionsSearch(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	env.do(t, http.MethodPost, "/deposit", url.Values{"amount": {"100"}, "description": {"Salary"}}, cookie)
	env.do(t, http.MethodPost, "/withdraw", url.Values{"amount": {"40"}, "description": {"Rent"}}, cookie)

	rec := env.do(t, http.MethodGet, "/ui/transactions-table?q=sala", nil, cookie)
	body := rec.Body.String()
	if !strings.Contains(body, "Salary") {
		t.Fatal("expected the matching row")
	}
	if strings.Contains(body, "Rent") {
		t.Fatal("non-matching row should be filtered out")
	}
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	env.do(t, http.MethodPost, "/deposit", url.Values{"amount": {"100"}, "description": {"Salary"}}, cookie)

	rec := env.do(t, http.MethodGet, "/transactions/export", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("content disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Date,Description,Amount,Type") {
		t.Fatal("expected the CSV header row")
	}
	if !strings.Contains(body, "Salary") {
		t.Fatal("expected the transaction row")
	}
}

func TestExportSheetsNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	rec := env.do(t, http.MethodPost, "/transactions/export/sheets", nil, cookie)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotImplemented)
	}
}

func TestProfileEdit(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	rec := env.do(t, http.MethodGet, "/profile", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "confirm_password") {
		t.Fatal("read-only view should not show the edit form")
	}

	rec = env.do(t, http.MethodGet, "/profile?edit=1", nil, cookie)
	if !strings.Contains(rec.Body.String(), "confirm_password") {
		t.Fatal("edit view should show the form")
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signUp(t, "Aline", "aline@example.com", "secret1")

	rec := env.do(t, http.MethodPost, "/logout", nil, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?notice=loggedout" {
		t.Fatalf("redirect = %q", loc)
	}

	// The session is gone server side; the cookie no longer works.
	rec = env.do(t, http.MethodGet, "/dashboard", nil, cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status after logout = %d, want redirect", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := env.do(t, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/login", nil, nil)
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}
}
