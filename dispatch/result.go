package dispatch

import "time"

// Result records the outcome of one request, keyed by request id in the
// map returned by ExecuteAll. It is never mutated once created.
type Result struct {
	// Success is true iff no transport error occurred and the final
	// status code is in [200,400).
	Success bool
	// Body is the response payload, empty when the transport never
	// produced one.
	Body string
	// StatusCode is 0 when the transport never connected.
	StatusCode int
	// Err describes the transport failure, empty on success. An HTTP
	// error status alone leaves it empty; callers must check both fields.
	Err string
	// Duration is the wall-clock time from dispatch to completion.
	Duration time.Duration
}

// Callback is invoked zero or one time per request, on completion only.
type Callback func(result Result, requestID string)
