package pubsub

import (
	"context"
	"fmt"

	"github.com/dipjyotimetia/pubsub-client/internal/wire"
)

// Pull fetches up to the configured number of messages from the
// subscription. ReceivedOK with no messages means none are available.
// Incomplete elements are dropped and counted in Skipped.
func (c *Client) Pull(ctx context.Context, token string, topic TopicRef) (PullResult, error) {
	if err := validate(token, topic.ProjectID, "subscription id", topic.SubscriptionID); err != nil {
		return PullResult{ReceivedError: true}, err
	}

	body, err := wire.EncodePullRequest(c.maxMessages)
	if err != nil {
		return PullResult{ReceivedError: true}, fmt.Errorf("failed to encode pull request: %w", err)
	}

	out := c.exec.Execute(ctx, newRequest(token, c.subscriptionURL(topic), body))
	if !out.Delivered {
		c.log.Error("Pull from %s failed: no response", topic.SubscriptionID)
		return PullResult{ReceivedError: true}, fmt.Errorf("%w: pull from subscription %s", ErrTransportFailure, topic.SubscriptionID)
	}

	batch, err := wire.DecodePullResponse(out.Body)
	if err != nil {
		c.log.Error("Pull from %s returned an unusable response: %v", topic.SubscriptionID, err)
		return PullResult{ReceivedError: true}, fmt.Errorf("failed to pull from subscription %s: %w", topic.SubscriptionID, err)
	}

	for _, skipped := range batch.Skipped {
		c.log.Warn("Dropped message from %s: %v", topic.SubscriptionID, skipped)
	}

	result := PullResult{
		Messages:   make([]InboundMessage, 0, len(batch.Messages)),
		ReceivedOK: true,
		Skipped:    len(batch.Skipped),
	}
	for _, m := range batch.Messages {
		result.Messages = append(result.Messages, InboundMessage{
			RawPayload:      m.Data,
			ServerMessageID: m.MessageID,
			PublishTime:     m.PublishTime,
		})
	}
	c.log.Info("Received %d messages from %s", len(result.Messages), topic.SubscriptionID)
	return result, nil
}
