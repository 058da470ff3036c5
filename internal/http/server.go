// Package http serves the wallet web UI: server-rendered pages and HTMX
// partials over the wallet backend ports. No business logic lives here;
// handlers fetch, derive views, and render.
package http

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ehuza/internal/amqp"
	"ehuza/internal/cache"
	"ehuza/internal/core"
	applog "ehuza/internal/log"
	"ehuza/internal/session"
	"ehuza/internal/wallet"
	appweb "ehuza/web"
)

const cacheTTL = 5 * time.Minute

// ExportPublisher hands an export request to the async pipeline.
// Nil when the deployment has no AMQP/Sheets configuration.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, msg *amqp.ExportRequestMessage) error
}

type Server struct {
	http.Server
	templates *template.Template
	backend   wallet.Backend
	sessions  *session.Store
	exports   ExportPublisher
	pageSize  int

	rateLimiter  *rateLimiter
	cacheManager *cache.Manager

	// Read-through caches in front of the backend, keyed per session.
	// Mutations invalidate; that is the whole consistency mechanism.
	profileCache *cache.LRUCache[core.Profile]
	balanceCache *cache.LRUCache[core.Money]
	historyCache *cache.LRUCache[wallet.TransactionPage]
	monthlyCache *cache.LRUCache[[]core.MonthlyPoint]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, backend wallet.Backend, sessions *session.Store, exports ExportPublisher, pageSize int) *Server {
	mux := http.NewServeMux()

	if pageSize < 1 {
		pageSize = 10
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:      backend,
		sessions:     sessions,
		exports:      exports,
		pageSize:     pageSize,
		rateLimiter:  newRateLimiter(),
		cacheManager: cache.NewManager(),
		profileCache: cache.NewLRUCache[core.Profile](500, cacheTTL),
		balanceCache: cache.NewLRUCache[core.Money](500, cacheTTL),
		historyCache: cache.NewLRUCache[wallet.TransactionPage](1000, cacheTTL),
		monthlyCache: cache.NewLRUCache[[]core.MonthlyPoint](500, cacheTTL),
	}

	s.cacheManager.Register(s.profileCache)
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.Register(s.historyCache)
	s.cacheManager.Register(s.monthlyCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Public routes
	mux.HandleFunc("/", s.withSecurityHeaders(s.handleRoot))
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/forgot-password", s.withSecurityHeaders(s.handleForgotPassword))
	mux.HandleFunc("/reset-password/", s.withSecurityHeaders(s.handleResetPassword))

	// Session-gated routes
	mux.HandleFunc("/dashboard", s.withSecurityHeaders(s.requireSession(s.handleDashboard)))
	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.requireSession(s.handleTransactions)))
	mux.HandleFunc("/transactions/export", s.withSecurityHeaders(s.requireSession(s.handleExportCSV)))
	mux.HandleFunc("/transactions/export/sheets", s.withSecurityHeaders(s.requireSession(s.handleExportSheets)))
	mux.HandleFunc("/deposit", s.withSecurityHeaders(s.requireSession(s.handleDeposit)))
	mux.HandleFunc("/withdraw", s.withSecurityHeaders(s.requireSession(s.handleWithdraw)))
	mux.HandleFunc("/profile", s.withSecurityHeaders(s.requireSession(s.handleProfile)))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.requireSession(s.handleLogout)))

	// UI partials
	mux.HandleFunc("/ui/transactions-table", s.withSecurityHeaders(s.requireSession(s.handleTransactionsTable)))
	mux.HandleFunc("/ui/dashboard-cards", s.withSecurityHeaders(s.requireSession(s.handleDashboardCards)))
	mux.HandleFunc("/ui/monthly-chart", s.withSecurityHeaders(s.requireSession(s.handleMonthlyChart)))
	mux.HandleFunc("/ui/notifications", s.withSecurityHeaders(s.requireSession(s.handleNotifications)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path,
			applog.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests (form submissions)
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", applog.FieldClientIP, clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			"method", r.Method,
			"url", r.URL.Path,
			applog.FieldStatus, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// requireSession gates a route behind a valid session. The session lands in
// the request context; the API transport reads the token from there. This is
// the only place browser storage is consulted.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		sess, err := s.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			}
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if session.TokenExpired(sess.Token, time.Now()) {
			slog.InfoContext(r.Context(), "Session token expired", "session_id", sess.ID)
			if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
				slog.WarnContext(r.Context(), "Failed to delete expired session", "error", err)
			}
			s.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(session.NewContext(r.Context(), sess)))
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// renderError shows the full-page error state used for profile/session load
// failures that block the rest of the page.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.WriteHeader(status)
	s.render(w, r, "error.html", struct{ Message string }{Message: message})
}
