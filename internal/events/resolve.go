package events

import "time"

// ResolveStart is emitted before a resolver-backed field runs. Fields served
// by the default source lookup do not emit events.
type ResolveStart struct {
	ObjectType string
	Field      string
	Path       string
}

// ResolveFinish is emitted after a resolver-backed field returns.
type ResolveFinish struct {
	ObjectType string
	Field      string
	Path       string
	Err        error
	Duration   time.Duration
}
