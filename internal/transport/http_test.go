package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/pubsub-client/internal/transport"
)

func executeHTTP(t *testing.T, url string, req *transport.Request) transport.Outcome {
	t.Helper()
	if req == nil {
		req = &transport.Request{Method: http.MethodPost, Body: []byte(`{"maxMessages":10}`)}
	}
	req.URL = url
	bridge := transport.NewBridge(transport.NewHTTPTransport(2*time.Second), 2*time.Second, quietLogger())
	return bridge.Execute(context.Background(), req)
}

func TestHTTPTransport_ContentLengthBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"messageIds":["123456"]}`)
	}))
	defer srv.Close()

	out := executeHTTP(t, srv.URL, nil)

	require.True(t, out.Delivered)
	assert.Equal(t, `{"messageIds":["123456"]}`, string(out.Body))
}

func TestHTTPTransport_ChunkedBody(t *testing.T) {
	large := strings.Repeat("x", 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, part := range []string{`{"pad":"`, large, `"}`} {
			_, _ = io.WriteString(w, part)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	out := executeHTTP(t, srv.URL, nil)

	require.True(t, out.Delivered)
	assert.Equal(t, `{"pad":"`+large+`"}`, string(out.Body))
}

func TestHTTPTransport_ForwardsRequest(t *testing.T) {
	var gotMethod, gotAuth, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer abc")
	header.Set("Content-Type", "application/json")
	out := executeHTTP(t, srv.URL, &transport.Request{Method: http.MethodPost, Header: header, Body: []byte(`{"maxMessages":3}`)})

	require.True(t, out.Delivered)
	assert.Empty(t, out.Body)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, `{"maxMessages":3}`, gotBody)
}

func TestHTTPTransport_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":401}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	out := executeHTTP(t, srv.URL, nil)

	assert.True(t, out.Completed)
	assert.False(t, out.Delivered)
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := executeHTTP(t, url, nil)

	assert.True(t, out.Completed)
	assert.False(t, out.Delivered)
}

func TestHTTPTransport_InvalidURLDoesNotStart(t *testing.T) {
	tr := transport.NewHTTPTransport(time.Second)
	h, err := tr.Send(context.Background(), &transport.Request{Method: "POST", URL: "://bad"}, nil)

	assert.Error(t, err)
	assert.Nil(t, h)
}

func TestHTTPTransport_ServerTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	bridge := transport.NewBridge(transport.NewHTTPTransport(time.Minute), 100*time.Millisecond, quietLogger())
	out := bridge.Execute(context.Background(), &transport.Request{Method: http.MethodPost, URL: srv.URL})

	assert.True(t, out.Completed)
	assert.False(t, out.Delivered)
}
