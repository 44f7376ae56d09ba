package pubsub

import (
	"context"
	"fmt"

	"github.com/dipjyotimetia/pubsub-client/internal/wire"
)

// Publish sends msg to the topic and records the outcome on msg. The
// returned error explains a failure; msg.Failed is set whenever it is non-nil.
// Invalid arguments fail before any network I/O.
//
// Publish is issued exactly once. Retrying a failed publish may create a
// duplicate if the service did accept the first attempt.
func (c *Client) Publish(ctx context.Context, token string, topic TopicRef, msg *OutboundMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidArgument)
	}
	msg.Accepted, msg.Failed, msg.ServerMessageID = false, false, ""

	if err := validate(token, topic.ProjectID, "topic name", topic.TopicName); err != nil {
		msg.Failed = true
		return err
	}

	body, err := wire.EncodePublishRequest(msg.Payload, msg.Attributes)
	if err != nil {
		msg.Failed = true
		return fmt.Errorf("failed to encode message for topic %s: %w", topic.TopicName, err)
	}

	out := c.exec.Execute(ctx, newRequest(token, c.topicURL(topic), body))
	if !out.Delivered {
		msg.Failed = true
		c.log.Error("Publish to %s failed: no response", topic.TopicName)
		return fmt.Errorf("%w: publish to topic %s", ErrTransportFailure, topic.TopicName)
	}

	id, err := wire.DecodePublishResponse(out.Body)
	if err != nil {
		msg.Failed = true
		c.log.Error("Publish to %s returned an unusable response: %v", topic.TopicName, err)
		return fmt.Errorf("failed to publish message to topic %s: %w", topic.TopicName, err)
	}

	msg.ServerMessageID = id
	msg.Accepted = true
	c.log.Info("Published message to %s with ID: %s", topic.TopicName, id)
	return nil
}

// PublishToTopics publishes the same payload to each topic of the project and
// returns the message id per topic that accepted it
func (c *Client) PublishToTopics(ctx context.Context, token, projectID string, topicNames []string, payload []byte, attributes map[string]string) (map[string]string, error) {
	messageIDs := make(map[string]string)

	for _, name := range topicNames {
		msg := &OutboundMessage{Payload: payload, Attributes: attributes}
		if err := c.Publish(ctx, token, TopicRef{ProjectID: projectID, TopicName: name}, msg); err != nil {
			c.log.Warn("Failed to publish to topic %s: %v", name, err)
			continue
		}
		messageIDs[name] = msg.ServerMessageID
	}

	if len(messageIDs) == 0 {
		return nil, fmt.Errorf("failed to publish to any topics")
	}
	return messageIDs, nil
}
