package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("token exchange rejected")
}

type countingSource struct {
	calls int
}

func (c *countingSource) Token() (*oauth2.Token, error) {
	c.calls++
	return &oauth2.Token{AccessToken: "ya29.counted", Expiry: time.Now().Add(time.Hour)}, nil
}

func TestStatic(t *testing.T) {
	tok, err := Static("abc").CurrentToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = Static("").CurrentToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestOAuth2_ValidToken(t *testing.T) {
	p := NewOAuth2(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.valid"}))

	tok, err := p.CurrentToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.valid", tok)
}

func TestOAuth2_ReusesUnexpiredToken(t *testing.T) {
	src := &countingSource{}
	p := NewOAuth2(src)

	for i := 0; i < 3; i++ {
		tok, err := p.CurrentToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ya29.counted", tok)
	}
	assert.Equal(t, 1, src.calls)
}

func TestOAuth2_ExpiredToken(t *testing.T) {
	p := NewOAuth2(oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "ya29.old",
		Expiry:      time.Now().Add(-time.Minute),
	}))

	_, err := p.CurrentToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestOAuth2_SourceError(t *testing.T) {
	p := NewOAuth2(failingSource{})

	_, err := p.CurrentToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange rejected")
}

func TestFromCredentialsJSON(t *testing.T) {
	data := []byte(`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"refresh"}`)

	p, err := FromCredentialsJSON(context.Background(), data)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestFromCredentialsJSON_Invalid(t *testing.T) {
	_, err := FromCredentialsJSON(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestFromCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"refresh"}`), 0o600))

	p, err := FromCredentialsFile(context.Background(), path)
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = FromCredentialsFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
