package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/examshare/examshare-client/internal/model"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if c.refreshes == nil {
		return c.callRefresh(ctx, refreshToken)
	}

	// The shared call must not die with whichever caller happened to start it,
	// but each caller still stops waiting when its own ctx ends.
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		return c.callRefresh(context.WithoutCancel(ctx), refreshToken)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// callRefresh exchanges refreshToken for a new access token. It goes straight
// to the transport so a failing refresh is never itself refreshed.
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (string, error) {
	req := Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Header: http.Header{"Content-Type": []string{"application/json"}},
	}
	body, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}
	req.Body = body

	httpReq, err := newHTTPRequest(ctx, c.baseURL, req, "")
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("token refresh: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d", model.ErrRefreshRejected, httpResp.StatusCode)
	}

	var payload refreshResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", model.ErrRefreshRejected, err)
	}
	if payload.Access == "" {
		return "", fmt.Errorf("%w: empty access token", model.ErrRefreshRejected)
	}

	return payload.Access, nil
}
