package model

import "context"

// Navigator sends the session to an unauthenticated entry point.
type Navigator interface {
	Redirect(ctx context.Context, target string)
}
