package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/examshare/examshare-client/internal/model"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a UUID, reusing the caller's when it is valid.
type RequestID struct {
	contextManager model.ContextManager
}

func NewRequestID(contextManager model.ContextManager) *RequestID {
	return &RequestID{contextManager: contextManager}
}

func (m *RequestID) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil || id == uuid.Nil {
			id = uuid.New()
		}

		w.Header().Set(RequestIDHeader, id.String())
		ctx := m.contextManager.SetRequestIDToContext(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
