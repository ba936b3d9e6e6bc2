package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/examshare/examshare-client/internal/model"
)

// Request describes an outbound call. It is never mutated once dispatched,
// so the same value can be sent again after a token refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte

	// Bearer, when set, is sent instead of the stored access token and
	// disables the refresh-and-replay recovery for this request.
	Bearer string

	// Anonymous sends no credentials and disables recovery. Login and
	// registration use it so a wrong password is not mistaken for an
	// expired session.
	Anonymous bool

	// NoRedirect makes the transport hand back 3xx responses as they are.
	NoRedirect bool
}

// RequestOption customizes a Request built by Client.Request.
type RequestOption func(*Request)

// WithQuery adds query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				r.Query.Add(k, v)
			}
		}
	}
}

// WithHeader sets a header on the outbound call. Authorization cannot be set this way.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set(key, value)
	}
}

// WithBearer sends token instead of the stored access token.
func WithBearer(token string) RequestOption {
	return func(r *Request) {
		r.Bearer = token
	}
}

// WithoutAuth sends the request without credentials.
func WithoutAuth() RequestOption {
	return func(r *Request) {
		r.Anonymous = true
	}
}

// WithoutRedirects returns 3xx responses to the caller instead of following them.
func WithoutRedirects() RequestOption {
	return func(r *Request) {
		r.NoRedirect = true
	}
}

// dispatch is one send of a Request. attempt is 0 for the original call
// and 1 for the replay that follows a token refresh.
type dispatch struct {
	id      uuid.UUID
	req     Request
	attempt int
}

func (d dispatch) replay() dispatch {
	return dispatch{id: d.id, req: d.req, attempt: d.attempt + 1}
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= http.StatusMultipleChoices && r.StatusCode < http.StatusBadRequest
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Err returns nil for 2xx responses and an *model.APIError otherwise.
func (r *Response) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &model.APIError{
		StatusCode: r.StatusCode,
		Detail:     errorDetail(r.Body),
		Body:       r.Body,
	}
}

// errorDetail pulls the human-readable message out of the backend's error bodies,
// which use either "detail" or "error".
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Error
}

// encodeBody turns a caller-supplied body into bytes plus an implied content type.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case string:
		return []byte(b), "", nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("read request body: %w", err)
		}
		return data, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return data, "application/json", nil
	}
}

// resolve joins path onto base, keeping a trailing slash and merging any
// query string embedded in path with query.
func resolve(base *url.URL, path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("path %q must be relative to the API base", path)
	}

	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return &u, nil
}

func newHTTPRequest(ctx context.Context, base *url.URL, req Request, token string) (*http.Request, error) {
	u, err := resolve(base, req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	if req.NoRedirect {
		ctx = context.WithValue(ctx, noRedirectKey{}, true)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	httpReq.Header.Del("Authorization")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}
