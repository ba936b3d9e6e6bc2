package metrics

import "github.com/examshare/examshare-client/internal/model"

// NoopRecorder discards everything.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) RecordRequest(string, int)    {}
func (n *NoopRecorder) RecordTransportError(string) {}
func (n *NoopRecorder) RecordRefresh(bool)          {}
func (n *NoopRecorder) RecordReplay(int)            {}

var _ model.MetricsRecorder = (*NoopRecorder)(nil)
