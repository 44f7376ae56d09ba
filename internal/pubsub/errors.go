package pubsub

import (
	"errors"

	"github.com/dipjyotimetia/pubsub-client/internal/wire"
)

// Errors returned alongside the result flags. Callers match them with errors.Is.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrTransportFailure  = errors.New("transport failure")
	ErrAuthFailure       = errors.New("auth failure")
	ErrMalformedResponse = wire.ErrMalformedResponse
	ErrMalformedElement  = wire.ErrMalformedElement
	ErrNoMessageID       = wire.ErrNoMessageID
)
