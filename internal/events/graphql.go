package events

import "time"

// GraphQLStart is published when an operation begins executing, after its
// document has parsed and validated.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is published once the operation's response is assembled.
// Errors carries the request's collected errors and Duration the wall time
// since the matching GraphQLStart.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
