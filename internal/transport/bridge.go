package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

// DefaultTimeout bounds how long Execute waits for an exchange.
const DefaultTimeout = 10 * time.Second

// ErrTimeout is recorded when an exchange outlives the bridge timeout.
var ErrTimeout = errors.New("exchange timed out")

// Bridge turns the callback stream of a Transport into one blocking call.
// Every Execute owns its accumulator and completion signal, so a Bridge can
// serve concurrent callers.
type Bridge struct {
	transport Transport
	timeout   time.Duration
	log       *logger.Logger
}

// NewBridge creates a bridge. A non-positive timeout uses DefaultTimeout.
func NewBridge(t Transport, timeout time.Duration, log *logger.Logger) *Bridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{
		transport: t,
		timeout:   timeout,
		log:       log,
	}
}

// Execute runs req and blocks until the exchange finishes, fails, times out
// or ctx is done. The returned Outcome is always Completed.
func (b *Bridge) Execute(ctx context.Context, req *Request) Outcome {
	ex := newExchange()

	handle, err := b.transport.Send(ctx, req, ex)
	if err != nil {
		b.log.Warn("Exchange %s %s did not start: %v", req.Method, req.URL, err)
		return Outcome{Completed: true}
	}

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case <-ex.done:
	case <-timer.C:
		ex.fail(fmt.Errorf("%w after %s", ErrTimeout, b.timeout))
		cancel(handle)
	case <-ctx.Done():
		ex.fail(ctx.Err())
		cancel(handle)
	}

	out, err := ex.take()
	if err != nil {
		b.log.Warn("Exchange %s %s failed: %v", req.Method, req.URL, err)
	} else {
		b.log.Debug("Exchange %s %s completed with %d bytes", req.Method, req.URL, len(out.Body))
	}
	return out
}

func cancel(h Handle) {
	if h != nil {
		h.Cancel()
	}
}

// exchange is the Handler for a single Execute call. The done channel is
// closed exactly once, after the outcome has been written.
type exchange struct {
	mu      sync.Mutex
	acc     Accumulator
	outcome Outcome
	err     error
	done    chan struct{}
}

func newExchange() *exchange {
	return &exchange{done: make(chan struct{})}
}

func (e *exchange) OnData(p []byte, chunked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome.Completed {
		return
	}
	e.acc.Write(p, chunked)
}

// OnFinish is authoritative: a finished exchange with zero bytes delivers an
// empty body.
func (e *exchange) OnFinish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome.Completed {
		return
	}
	e.outcome = Outcome{Body: e.acc.Finish(), Delivered: true, Completed: true}
	close(e.done)
}

func (e *exchange) OnError(err error) {
	e.fail(err)
}

func (e *exchange) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.outcome.Completed {
		return
	}
	e.acc.Abandon()
	e.err = err
	e.outcome = Outcome{Completed: true}
	close(e.done)
}

// take returns the outcome and releases the exchange's reference to the body.
func (e *exchange) take() (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, err := e.outcome, e.err
	e.outcome = Outcome{Completed: true}
	return out, err
}
