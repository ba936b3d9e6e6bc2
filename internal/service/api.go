// Package service wraps the exam platform endpoints in typed calls made
// through the authenticated API client.
package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/examshare/examshare-client/internal/apiclient"
)

// API is the authenticated transport the services call through.
// *apiclient.Client implements it.
type API interface {
	Request(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Response, error)
}

var _ API = (*apiclient.Client)(nil)

// call sends a request and decodes a 2xx JSON body into out when out is not nil.
// Non-2xx answers come back as *model.APIError.
func call(ctx context.Context, api API, method, path string, body, out any, opts ...apiclient.RequestOption) error {
	resp, err := api.Request(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

func epreuvePath(id int64, suffix string) string {
	return "/epreuves/" + strconv.FormatInt(id, 10) + "/" + suffix
}
