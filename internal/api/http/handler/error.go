package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examshare/examshare-client/internal/model"
)

type errorBody struct {
	Error string `json:"error"`
	Login string `json:"login,omitempty"`
}

// handleError maps a client error to the status the proxy answers with.
func handleError(err error, loginPath string) (int, errorBody) {
	switch {
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "session expired", Login: loginPath}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorBody{Error: "upstream timeout"}
	default:
		return http.StatusBadGateway, errorBody{Error: "upstream unavailable"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
