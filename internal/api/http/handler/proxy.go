package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/logger"
	"github.com/examshare/examshare-client/internal/model"
)

// MaxBodyBytes bounds the request bodies the proxy accepts.
const MaxBodyBytes = 32 << 20

// Doer is the part of the API client the proxy forwards through.
type Doer interface {
	Do(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

var _ Doer = (*apiclient.Client)(nil)

var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
}

// forwardedHeaders are the request headers copied to the upstream call.
// Authorization is never among them: the client attaches the stored token.
var forwardedHeaders = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
}

// Proxy forwards local requests to the API with the stored credentials.
type Proxy struct {
	client         Doer
	loginPath      string
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProxy creates a Proxy handler.
func NewProxy(client Doer, loginPath string, contextManager model.ContextManager, logger *logger.Logger) *Proxy {
	return &Proxy{
		client:         client,
		loginPath:      loginPath,
		contextManager: contextManager,
		logger:         logger,
	}
}

// ServeHTTP forwards the request found under the "rest" route variable.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := "/" + mux.Vars(r)["rest"]

	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "failed to read request body"})
			return
		}
		if len(data) > 0 {
			body = data
		}
	}

	req := apiclient.Request{
		Method:     r.Method,
		Path:       path,
		Query:      r.URL.Query(),
		Header:     http.Header{},
		Body:       body,
		NoRedirect: true,
	}
	for _, h := range forwardedHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := p.client.Do(r.Context(), req)
	if err != nil {
		args := []any{"method", r.Method, "path", path, "error", err.Error()}
		if id, ok := p.contextManager.GetRequestIDFromContext(r.Context()); ok {
			args = append(args, "request_id", id.String())
		}
		p.logger.Warn("proxy service: upstream call failed", args...)

		status, payload := handleError(err, p.loginPath)
		writeJSON(w, status, payload)
		return
	}

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		p.logger.Debug("proxy service: failed to write response", "error", err.Error())
	}
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		if k == "X-Request-Id" {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
	for _, h := range hopHeaders {
		dst.Del(h)
	}
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
