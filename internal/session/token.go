package session

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenExpired reports whether a stored backend token is already past its
// expiry. The token is treated as opaque: when it happens to be a JWT the
// exp claim is read without signature verification (the backend verifies
// signatures; this side only decides whether presenting it is pointless).
// Tokens that are not JWTs, or carry no exp claim, never expire locally.
func TokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
