package http

import (
	"log/slog"
	"net/http"
	"strings"

	"ehuza/internal/session"
	"ehuza/internal/wallet"
)

// authPageData is shared by the login and register pages. Submitted field
// values are echoed back so a validation failure never wipes the form.
type authPageData struct {
	Error  string
	Notice string
	Name   string
	Email  string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := authPageData{}
		switch r.URL.Query().Get("notice") {
		case "registered":
			data.Notice = "Account created. You can sign in now."
		case "reset":
			data.Notice = "Password updated. Sign in with your new password."
		case "loggedout":
			data.Notice = "You have been signed out."
		}
		s.render(w, r, "login.html", data)

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		data := authPageData{Email: email}

		// Validate locally before touching the network.
		if email == "" || password == "" {
			data.Error = "Email and password are required."
			s.render(w, r, "login.html", data)
			return
		}

		res, err := s.backend.Login(r.Context(), wallet.LoginInput{Email: email, Password: password})
		if err != nil {
			data.Error = wallet.ErrorMessage(err, "Could not sign in. Please try again.")
			s.render(w, r, "login.html", data)
			return
		}
		if !res.Success || res.Token == "" {
			data.Error = res.Message
			if data.Error == "" {
				data.Error = "Invalid email or password."
			}
			s.render(w, r, "login.html", data)
			return
		}

		sess, err := s.sessions.Create(r.Context(), res.Token, res.UserID)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to create session", "error", err)
			data.Error = "Could not start a session. Please try again."
			s.render(w, r, "login.html", data)
			return
		}

		s.setSessionCookie(w, sess)
		slog.InfoContext(r.Context(), "User signed in", "session_id", sess.ID, "user_id", res.UserID)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "register.html", authPageData{})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(r.FormValue("name"))
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		data := authPageData{Name: name, Email: email}

		if name == "" || email == "" || password == "" {
			data.Error = "All fields are required."
			s.render(w, r, "register.html", data)
			return
		}
		if password != confirm {
			data.Error = "Passwords do not match."
			s.render(w, r, "register.html", data)
			return
		}

		res, err := s.backend.Register(r.Context(), wallet.RegisterInput{Name: name, Email: email, Password: password})
		if err != nil {
			data.Error = wallet.ErrorMessage(err, "Could not create the account. Please try again.")
			s.render(w, r, "register.html", data)
			return
		}
		if !res.Success {
			data.Error = res.Message
			if data.Error == "" {
				data.Error = "Could not create the account."
			}
			s.render(w, r, "register.html", data)
			return
		}

		slog.InfoContext(r.Context(), "User registered", "user_id", res.UserID)
		http.Redirect(w, r, "/login?notice=registered", http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleForgotPassword accepts the email form on the login page and always
// renders a neutral notice; whether the address exists stays unspoken.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		s.render(w, r, "login.html", authPageData{Error: "Enter your email to request a reset link."})
		return
	}

	if _, err := s.backend.RequestPasswordReset(r.Context(), email); err != nil {
		slog.WarnContext(r.Context(), "Password reset request failed", "error", err)
	}
	s.render(w, r, "login.html", authPageData{
		Email:  email,
		Notice: "If that address has an account, a reset link is on its way.",
	})
}

type resetPageData struct {
	Token  string
	Error  string
	Notice string
}

// handleResetPassword serves /reset-password/{token}: GET shows the form,
// POST submits the new password to the backend.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/reset-password/")
	if token == "" || strings.Contains(token, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "reset_password.html", resetPageData{Token: token})

	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		data := resetPageData{Token: token}

		if password == "" {
			data.Error = "Enter a new password."
			s.render(w, r, "reset_password.html", data)
			return
		}
		if password != confirm {
			data.Error = "Passwords do not match."
			s.render(w, r, "reset_password.html", data)
			return
		}

		if _, err := s.backend.ResetPassword(r.Context(), token, password); err != nil {
			data.Error = wallet.ErrorMessage(err, "Could not reset the password. The link may have expired.")
			s.render(w, r, "reset_password.html", data)
			return
		}

		http.Redirect(w, r, "/login?notice=reset", http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLogout ends the session optimistically: the cookie and server-side
// session go away even if the store delete fails.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := session.FromContext(r.Context())
	if ok {
		if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
			slog.WarnContext(r.Context(), "Failed to delete session on logout", "session_id", sess.ID, "error", err)
		}
		s.dropSessionCaches(sess)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login?notice=loggedout", http.StatusSeeOther)
}
