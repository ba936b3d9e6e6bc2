// Package navigation implements the unauthenticated entry point the API client
// sends a session to once its credentials are gone.
package navigation

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/examshare/examshare-client/internal/model"
)

// Func adapts an ordinary function to model.Navigator.
type Func func(ctx context.Context, target string)

func (f Func) Redirect(ctx context.Context, target string) {
	f(ctx, target)
}

// Discard ignores redirects.
var Discard model.Navigator = Func(func(context.Context, string) {})

// Notice tells a terminal user to log in again.
type Notice struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNotice(w io.Writer) *Notice {
	return &Notice{w: w}
}

func (n *Notice) Redirect(_ context.Context, target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "session expired, log in again (%s)\n", target)
}

// Recorder remembers every redirect target, in order.
type Recorder struct {
	mu      sync.Mutex
	targets []string
}

func (r *Recorder) Redirect(_ context.Context, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
}

// Targets returns a copy of the recorded targets.
func (r *Recorder) Targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.targets))
	copy(out, r.targets)
	return out
}

var (
	_ model.Navigator = Func(nil)
	_ model.Navigator = (*Notice)(nil)
	_ model.Navigator = (*Recorder)(nil)
)
