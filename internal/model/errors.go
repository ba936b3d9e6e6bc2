package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by credential stores when a key is absent.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated marks an unrecoverable authentication failure:
	// credentials were cleared and the session was sent back to login.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNoRefreshToken is returned when a 401 arrives and no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshRejected is returned when the refresh endpoint does not issue a new access token.
	ErrRefreshRejected = errors.New("refresh token rejected")

	// ErrReplayUnauthorized is returned when a request is still unauthorized after a successful refresh.
	ErrReplayUnauthorized = errors.New("unauthorized after token refresh")
)

// APIError describes a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
