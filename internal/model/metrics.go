package model

// MetricsRecorder receives client-side API events.
type MetricsRecorder interface {
	RecordRequest(method string, statusCode int)
	RecordTransportError(method string)
	// RecordRefresh counts calls made to the refresh endpoint. Failures that
	// happen before a call is made, such as a missing refresh token, are not counted.
	RecordRefresh(success bool)
	RecordReplay(statusCode int)
}
