// Package wire translates between message payloads and the Pub/Sub REST
// JSON envelopes. It performs no I/O.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultMaxMessages is the pull batch size used when none is given.
const DefaultMaxMessages = 10

var (
	// ErrMalformedResponse means the body is not valid JSON of the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoMessageID means a publish response carried no usable message id.
	ErrNoMessageID = errors.New("no message id in publish response")
	// ErrMalformedElement means a single received message was incomplete.
	ErrMalformedElement = errors.New("malformed received message")
)

type outboundMessage struct {
	Data       string            `json:"data"`
	Attributes map[string]string `json:"attributes"`
}

type publishRequest struct {
	Messages []outboundMessage `json:"messages"`
}

type publishResponse struct {
	MessageIDs []string `json:"messageIds"`
}

type pullRequest struct {
	MaxMessages int `json:"maxMessages"`
}

type pullResponse struct {
	ReceivedMessages []json.RawMessage `json:"receivedMessages"`
}

type receivedMessage struct {
	Message *struct {
		Data        *string `json:"data"`
		MessageID   *string `json:"messageId"`
		PublishTime *string `json:"publishTime"`
	} `json:"message"`
}

// Message is one decoded element of a pull response.
type Message struct {
	Data        []byte
	MessageID   string
	PublishTime string
}

// PullBatch is the decoded content of a pull response. Skipped holds one
// error per element that could not be decoded.
type PullBatch struct {
	Messages []Message
	Skipped  []error
}

// EncodePublishRequest wraps a single payload in the publish envelope.
func EncodePublishRequest(payload []byte, attributes map[string]string) ([]byte, error) {
	if attributes == nil {
		attributes = map[string]string{}
	}
	return json.Marshal(publishRequest{
		Messages: []outboundMessage{{
			Data:       base64.StdEncoding.EncodeToString(payload),
			Attributes: attributes,
		}},
	})
}

// EncodePullRequest builds a pull body. Non-positive sizes use DefaultMaxMessages.
func EncodePullRequest(maxMessages int) ([]byte, error) {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return json.Marshal(pullRequest{MaxMessages: maxMessages})
}

// DecodePublishResponse returns the first message id of a publish response.
func DecodePublishResponse(body []byte) (string, error) {
	var resp publishResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.MessageIDs) == 0 || resp.MessageIDs[0] == "" {
		return "", ErrNoMessageID
	}
	return resp.MessageIDs[0], nil
}

// DecodePullResponse decodes every well-formed element of a pull response.
// An absent receivedMessages key is the service's empty answer, not an error.
func DecodePullResponse(body []byte) (PullBatch, error) {
	var resp pullResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PullBatch{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	batch := PullBatch{Messages: make([]Message, 0, len(resp.ReceivedMessages))}
	for i, raw := range resp.ReceivedMessages {
		msg, err := decodeReceivedMessage(raw)
		if err != nil {
			batch.Skipped = append(batch.Skipped, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		batch.Messages = append(batch.Messages, msg)
	}
	return batch, nil
}

func decodeReceivedMessage(raw json.RawMessage) (Message, error) {
	var rm receivedMessage
	if err := json.Unmarshal(raw, &rm); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedElement, err)
	}
	m := rm.Message
	switch {
	case m == nil:
		return Message{}, fmt.Errorf("%w: missing message", ErrMalformedElement)
	case m.Data == nil:
		return Message{}, fmt.Errorf("%w: missing data", ErrMalformedElement)
	case m.MessageID == nil:
		return Message{}, fmt.Errorf("%w: missing messageId", ErrMalformedElement)
	case m.PublishTime == nil:
		return Message{}, fmt.Errorf("%w: missing publishTime", ErrMalformedElement)
	}

	data, err := base64.StdEncoding.DecodeString(*m.Data)
	if err != nil {
		return Message{}, fmt.Errorf("%w: data: %v", ErrMalformedElement, err)
	}
	return Message{
		Data:        data,
		MessageID:   *m.MessageID,
		PublishTime: *m.PublishTime,
	}, nil
}
