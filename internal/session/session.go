// Package session owns the persisted session state: the mapping from the
// browser cookie to the backend-issued bearer token. It is the single place
// the token is read or written; login creates it, logout deletes it, and the
// HTTP layer reads it through the request context.
package session

import (
	"context"
	"errors"
	"time"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "ehuza_session"

var ErrNotFound = errors.New("session not found")

// Session links a browser to a backend credential.
type Session struct {
	ID        string
	Token     string
	UserID    string
	CreatedAt time.Time
}

type ctxKey struct{}

// NewContext stashes the session in the request context. The route guard is
// the only writer; everything downstream (handlers, the API transport) reads.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the route guard, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// TokenFromContext returns the bearer token for the current request.
// Requests outside a session (login, register) carry no token and the
// API transport leaves them unmodified.
func TokenFromContext(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok || s.Token == "" {
		return "", false
	}
	return s.Token, true
}
