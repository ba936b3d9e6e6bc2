package service

import (
	"context"
	"fmt"
	"time"

	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/model"
)

// SessionStatus describes the stored credentials without calling the server.
type SessionStatus struct {
	LoggedIn   bool       `json:"logged_in"`
	HasRefresh bool       `json:"has_refresh"`
	UserID     int64      `json:"user_id,omitempty"`
	TokenType  string     `json:"token_type,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Expired    bool       `json:"expired"`
	Error      string     `json:"error,omitempty"`
}

// Status inspects the stored access token. An expired token is still
// reported as logged in: the next request refreshes it.
func Status(ctx context.Context, session *credentials.Session, inspector model.TokenInspector, now time.Time) (SessionStatus, error) {
	creds, err := session.Credentials(ctx)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	st := SessionStatus{
		LoggedIn:   creds.AccessToken != "",
		HasRefresh: creds.RefreshToken != "",
	}
	if creds.AccessToken == "" {
		return st, nil
	}

	claims, err := inspector.Inspect(creds.AccessToken)
	if err != nil {
		st.Error = err.Error()
		return st, nil
	}

	st.UserID = claims.UserID
	st.TokenType = claims.TokenType
	st.Expired = claims.Expired(now)
	if !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		st.ExpiresAt = &exp
	}
	return st, nil
}
