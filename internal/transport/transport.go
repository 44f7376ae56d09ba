// Package transport runs single request/response exchanges against an
// event-driven transport and hands the result to a blocking caller.
package transport

import (
	"context"
	"net/http"
)

// Request describes one outbound exchange.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Handler receives the notifications of a single exchange. A transport calls
// OnData zero or more times and then exactly one of OnFinish or OnError.
// The slice passed to OnData is only valid for the duration of the call.
type Handler interface {
	OnData(p []byte, chunked bool)
	OnFinish()
	OnError(err error)
}

// Handle controls an exchange that has been started.
type Handle interface {
	Cancel()
}

// Transport starts exchanges. Send returns an error only when the exchange
// could not be started; later failures are reported through the Handler.
type Transport interface {
	Send(ctx context.Context, req *Request, h Handler) (Handle, error)
}

// Outcome is the result of one exchange. Delivered is false when the
// exchange failed, timed out or never started; Body is nil in that case.
type Outcome struct {
	Body      []byte
	Delivered bool
	Completed bool
}
