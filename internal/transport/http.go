package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"
)

const readBufferSize = 2048

// HTTPTransport delivers net/http responses through Handler callbacks. Each
// exchange runs on its own goroutine.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport whose client gives up after timeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return NewHTTPTransportWithClient(&http.Client{Timeout: timeout})
}

// NewHTTPTransportWithClient creates a transport around an existing client.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

type httpHandle struct {
	cancel context.CancelFunc
}

func (h *httpHandle) Cancel() { h.cancel() }

// Send builds the request and starts it. Connection, TLS and status failures
// are reported through h.OnError.
func (t *HTTPTransport) Send(ctx context.Context, req *Request, h Handler) (Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	go t.run(httpReq, h, cancel)
	return &httpHandle{cancel: cancel}, nil
}

func (t *HTTPTransport) run(req *http.Request, h Handler, cancel context.CancelFunc) {
	defer cancel()

	resp, err := t.client.Do(req)
	if err != nil {
		h.OnError(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		h.OnError(fmt.Errorf("unexpected status %s", resp.Status))
		return
	}

	chunked := slices.Contains(resp.TransferEncoding, "chunked")
	buf := make([]byte, readBufferSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			h.OnData(buf[:n], chunked)
		}
		if errors.Is(err, io.EOF) {
			h.OnFinish()
			return
		}
		if err != nil {
			h.OnError(err)
			return
		}
	}
}
