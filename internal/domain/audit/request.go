package audit

import "time"

// Request describes the inbound call an operation log row belongs to.
type Request struct {
	Path       string
	Method     string
	StatusCode int
	Elapsed    time.Duration
}
