package pubsub

import (
	"context"
	"fmt"
)

// TokenProvider returns a bearer token that is valid right now. Refreshing
// and caching are up to the provider.
type TokenProvider interface {
	CurrentToken(ctx context.Context) (string, error)
}

// Session binds a client to a token provider and a fixed TopicRef
type Session struct {
	client *Client
	tokens TokenProvider
	topic  TopicRef
}

// NewSession creates a session for topic
func NewSession(client *Client, tokens TokenProvider, topic TopicRef) *Session {
	return &Session{
		client: client,
		tokens: tokens,
		topic:  topic,
	}
}

// Topic returns the session's TopicRef
func (s *Session) Topic() TopicRef {
	return s.topic
}

// Publish fetches a token and publishes msg. A token failure marks msg as
// failed without any network I/O.
func (s *Session) Publish(ctx context.Context, msg *OutboundMessage) error {
	token, err := s.token(ctx)
	if err != nil {
		if msg != nil {
			msg.Accepted, msg.Failed, msg.ServerMessageID = false, true, ""
		}
		return err
	}
	return s.client.Publish(ctx, token, s.topic, msg)
}

// Pull fetches a token and pulls from the session's subscription
func (s *Session) Pull(ctx context.Context) (PullResult, error) {
	token, err := s.token(ctx)
	if err != nil {
		return PullResult{ReceivedError: true}, err
	}
	return s.client.Pull(ctx, token, s.topic)
}

func (s *Session) token(ctx context.Context) (string, error) {
	token, err := s.tokens.CurrentToken(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: provider returned an empty token", ErrAuthFailure)
	}
	return token, nil
}
