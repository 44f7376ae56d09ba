// Package transporttest provides a scripted Transport for tests.
package transporttest

import (
	"context"
	"sync"

	"github.com/dipjyotimetia/pubsub-client/internal/transport"
)

// Responder plays the transport side of one exchange.
type Responder func(ctx context.Context, req *transport.Request, h transport.Handler)

// Stub is a Transport that records every request and answers with Respond
// on a separate goroutine.
type Stub struct {
	Respond  Responder
	StartErr error

	mu       sync.Mutex
	requests []*transport.Request
}

type handle struct {
	cancel context.CancelFunc
}

func (h handle) Cancel() { h.cancel() }

// Send records req and starts the responder.
func (s *Stub) Send(ctx context.Context, req *transport.Request, h transport.Handler) (transport.Handle, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.StartErr != nil {
		return nil, s.StartErr
	}
	ctx, cancel := context.WithCancel(ctx)
	respond := s.Respond
	if respond == nil {
		respond = Body("")
	}
	go respond(ctx, req, h)
	return handle{cancel: cancel}, nil
}

// Calls returns how many exchanges were requested.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the recorded requests.
func (s *Stub) Requests() []*transport.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*transport.Request(nil), s.requests...)
}

// Body answers with body delivered in a single non-chunked piece.
func Body(body string) Responder {
	return func(_ context.Context, _ *transport.Request, h transport.Handler) {
		if body != "" {
			h.OnData([]byte(body), false)
		}
		h.OnFinish()
	}
}

// Chunks answers with each chunk delivered as its own chunked piece.
func Chunks(chunks ...string) Responder {
	return func(_ context.Context, _ *transport.Request, h transport.Handler) {
		for _, c := range chunks {
			h.OnData([]byte(c), true)
		}
		h.OnFinish()
	}
}

// Fail answers with err after delivering partial, if any.
func Fail(err error, partial ...string) Responder {
	return func(_ context.Context, _ *transport.Request, h transport.Handler) {
		for _, p := range partial {
			h.OnData([]byte(p), true)
		}
		h.OnError(err)
	}
}

// Hang never answers until the exchange is cancelled.
func Hang() Responder {
	return func(ctx context.Context, _ *transport.Request, h transport.Handler) {
		<-ctx.Done()
		h.OnError(ctx.Err())
	}
}
