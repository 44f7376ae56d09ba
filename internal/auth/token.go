// Package auth supplies bearer tokens for the Pub/Sub REST API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// PubSubScope is the OAuth2 scope required for publish and pull.
const PubSubScope = "https://www.googleapis.com/auth/pubsub"

// ErrNoToken is returned when a provider has nothing to hand out.
var ErrNoToken = errors.New("no access token available")

// Static always returns the same token.
type Static string

// CurrentToken returns the token, or ErrNoToken if it is empty.
func (s Static) CurrentToken(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// OAuth2 adapts an oauth2.TokenSource. Tokens are cached and refreshed
// shortly before they expire.
type OAuth2 struct {
	src oauth2.TokenSource
}

// NewOAuth2 wraps src in a reusing token source.
func NewOAuth2(src oauth2.TokenSource) *OAuth2 {
	return &OAuth2{src: oauth2.ReuseTokenSource(nil, src)}
}

// CurrentToken returns a valid access token from the source.
func (o *OAuth2) CurrentToken(ctx context.Context) (string, error) {
	tok, err := o.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	if !tok.Valid() {
		return "", ErrNoToken
	}
	return tok.AccessToken, nil
}

// FromCredentialsJSON builds a provider from service account or user
// credentials in JSON form.
func FromCredentialsJSON(ctx context.Context, data []byte) (*OAuth2, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, PubSubScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return NewOAuth2(creds.TokenSource), nil
}

// FromCredentialsFile reads credentials from path.
func FromCredentialsFile(ctx context.Context, path string) (*OAuth2, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	return FromCredentialsJSON(ctx, data)
}

// FromDefaultCredentials uses Application Default Credentials.
func FromDefaultCredentials(ctx context.Context) (*OAuth2, error) {
	creds, err := google.FindDefaultCredentials(ctx, PubSubScope)
	if err != nil {
		return nil, fmt.Errorf("failed to find default credentials: %w", err)
	}
	return NewOAuth2(creds.TokenSource), nil
}
