package model

import "time"

// TokenClaims is what the client can learn from an access token without the signing key.
type TokenClaims struct {
	UserID    int64
	TokenType string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now.
// Tokens without an exp claim never expire.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// TokenInspector decodes access tokens.
type TokenInspector interface {
	Inspect(token string) (TokenClaims, error)
}
