// Package events defines the payloads published on the event bus. Every
// event is published with the context of the request or build it describes,
// so subscribers can read the request id from it.
package events

import (
	"net/http"
	"time"
)

// HTTPStart is published when the server accepts a request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published after the response has been written. Bytes counts
// the response body.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Bytes    int64
	Duration time.Duration
}

// GraphQLStart is published before an operation executes. Each operation of
// a batched request is published on its own.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is published after an operation has executed. Codes holds
// the "code" extension of the errors that carry one, such as
// FEDERATION_INVALID_SCHEMA.
type GraphQLFinish struct {
	OperationName string
	OperationType string
	Errors        []error
	Codes         []string
	Duration      time.Duration
}
