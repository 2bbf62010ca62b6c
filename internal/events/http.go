package events

import (
	"net/http"
	"time"
)

// HTTPStart is published as soon as the handler accepts a request, before
// the body is read. The publishing context carries the request ID.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published after the response is written. A batched request
// produces one HTTPStart/HTTPFinish pair around all of its operations.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
