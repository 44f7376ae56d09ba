package pubsub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dipjyotimetia/pubsub-client/internal/transport"
	"github.com/dipjyotimetia/pubsub-client/internal/wire"
	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

// DefaultBaseURL is the public Pub/Sub REST endpoint
const DefaultBaseURL = "https://pubsub.googleapis.com"

// Executor runs a single exchange and blocks until it completes
type Executor interface {
	Execute(ctx context.Context, req *transport.Request) transport.Outcome
}

// Config holds the client configuration
type Config struct {
	BaseURL     string
	MaxMessages int
	Executor    Executor
	Logger      *logger.Logger
}

// Client issues publish and pull exchanges against the Pub/Sub REST API.
// Calls are independent and may run concurrently.
type Client struct {
	baseURL     string
	maxMessages int
	exec        Executor
	log         *logger.Logger
}

// NewClient creates a new Pub/Sub REST client
func NewClient(cfg *Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	maxMessages := cfg.MaxMessages
	if maxMessages <= 0 {
		maxMessages = wire.DefaultMaxMessages
	}
	return &Client{
		baseURL:     base,
		maxMessages: maxMessages,
		exec:        cfg.Executor,
		log:         cfg.Logger,
	}
}

// NewHTTPClient creates a client that talks to baseURL over net/http, giving
// up on any exchange after timeout
func NewHTTPClient(baseURL string, maxMessages int, timeout time.Duration, log *logger.Logger) *Client {
	bridge := transport.NewBridge(transport.NewHTTPTransport(timeout), timeout, log)
	return NewClient(&Config{
		BaseURL:     baseURL,
		MaxMessages: maxMessages,
		Executor:    bridge,
		Logger:      log,
	})
}

// BaseURL returns the endpoint requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) topicURL(topic TopicRef) string {
	return fmt.Sprintf("%s/v1/projects/%s/topics/%s:publish",
		c.baseURL, url.PathEscape(topic.ProjectID), url.PathEscape(topic.TopicName))
}

func (c *Client) subscriptionURL(topic TopicRef) string {
	return fmt.Sprintf("%s/v1/projects/%s/subscriptions/%s:pull",
		c.baseURL, url.PathEscape(topic.ProjectID), url.PathEscape(topic.SubscriptionID))
}

func newRequest(token, u string, body []byte) *transport.Request {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	return &transport.Request{
		Method: http.MethodPost,
		URL:    u,
		Header: h,
		Body:   body,
	}
}

func validate(token, projectID, resourceKind, resource string) error {
	switch {
	case token == "":
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	case projectID == "":
		return fmt.Errorf("%w: empty project id", ErrInvalidArgument)
	case resource == "":
		return fmt.Errorf("%w: empty %s", ErrInvalidArgument, resourceKind)
	}
	return nil
}
