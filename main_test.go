package main

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dipjyotimetia/pubsub-client/internal/auth"
	"github.com/dipjyotimetia/pubsub-client/internal/emulator"
	"github.com/dipjyotimetia/pubsub-client/internal/pubsub"
	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

const testProject = "test-project"

// setupTestEnvironment starts an in-process emulator with one
// topic/subscription pair per comma-separated entry
func setupTestEnvironment(t *testing.T, topics, subs string) (*emulator.Emulator, *pubsub.Client) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, slog.LevelInfo)

	emu := emulator.New(log)
	t.Cleanup(emu.Close)
	require.NoError(t, emu.CreateTopicsAndSubscriptions(testProject,
		strings.Split(topics, ","), strings.Split(subs, ",")))

	srv := httptest.NewServer(emu.Handler())
	t.Cleanup(srv.Close)

	return emu, pubsub.NewHTTPClient(srv.URL, 10, 5*time.Second, log)
}

func TestCreateTopicSubscription(t *testing.T) {
	emu, _ := setupTestEnvironment(t, "test-topic-1,test-topic-2", "test-sub-1,test-sub-2")

	stats := emu.GetStats()
	assert.Equal(t, []string{
		"projects/test-project/topics/test-topic-1",
		"projects/test-project/topics/test-topic-2",
	}, stats.Topics)
	assert.Equal(t, []string{
		"projects/test-project/subscriptions/test-sub-1",
		"projects/test-project/subscriptions/test-sub-2",
	}, stats.Subscriptions)
}

func TestPublishMessage(t *testing.T) {
	_, client := setupTestEnvironment(t, "test-topic", "test-subscription")

	msg := &pubsub.OutboundMessage{Payload: []byte("Hello, Pub/Sub emulator!")}
	err := client.Publish(t.Context(), "token", pubsub.TopicRef{
		ProjectID: testProject,
		TopicName: "test-topic",
	}, msg)

	require.NoError(t, err)
	assert.True(t, msg.Accepted)
	assert.False(t, msg.Failed)
	assert.Equal(t, "1", msg.ServerMessageID)
}

func TestPublishToMissingTopic(t *testing.T) {
	_, client := setupTestEnvironment(t, "test-topic", "test-subscription")

	msg := &pubsub.OutboundMessage{Payload: []byte("x")}
	err := client.Publish(t.Context(), "token", pubsub.TopicRef{
		ProjectID: testProject,
		TopicName: "missing-topic",
	}, msg)

	assert.ErrorIs(t, err, pubsub.ErrTransportFailure)
	assert.True(t, msg.Failed)
}

func TestSubscribeAndReceiveMessages(t *testing.T) {
	_, client := setupTestEnvironment(t, "test-topic", "test-subscription")
	session := pubsub.NewSession(client, auth.Static("token"), pubsub.TopicRef{
		ProjectID:      testProject,
		TopicName:      "test-topic",
		SubscriptionID: "test-subscription",
	})

	for _, body := range []string{"first", "second"} {
		msg := &pubsub.OutboundMessage{
			Payload:    []byte(body),
			Attributes: map[string]string{"source": "main_test"},
		}
		require.NoError(t, session.Publish(t.Context(), msg))
	}

	result, err := session.Pull(t.Context())
	require.NoError(t, err)
	assert.True(t, result.ReceivedOK)
	assert.Zero(t, result.Skipped)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, "first", string(result.Messages[0].RawPayload))
	assert.Equal(t, "second", string(result.Messages[1].RawPayload))
	assert.Equal(t, "2", result.Messages[1].ServerMessageID)
	_, err = time.Parse(time.RFC3339Nano, result.Messages[0].PublishTime)
	assert.NoError(t, err)

	result, err = session.Pull(t.Context())
	require.NoError(t, err)
	assert.True(t, result.ReceivedOK)
	assert.Empty(t, result.Messages)
}

// TestAgainstExternalEmulator runs against an emulator started separately
// with `pubsub-client serve`
func TestAgainstExternalEmulator(t *testing.T) {
	host := os.Getenv("PUBSUB_EMULATOR_HOST")
	if host == "" {
		t.Skip("PUBSUB_EMULATOR_HOST not set")
	}
	topic := os.Getenv("PUBSUB_TOPIC")
	sub := os.Getenv("PUBSUB_SUBSCRIPTION")
	if os.Getenv("PUBSUB_PROJECT") == "" || topic == "" || sub == "" {
		t.Skip("PUBSUB_PROJECT, PUBSUB_TOPIC or PUBSUB_SUBSCRIPTION not set")
	}

	log := logger.NewWithWriter(io.Discard, slog.LevelInfo)
	client := pubsub.NewHTTPClient("http://"+host, 10, 10*time.Second, log)
	session := pubsub.NewSession(client, auth.Static("emulator"), pubsub.TopicRef{
		ProjectID:      os.Getenv("PUBSUB_PROJECT"),
		TopicName:      strings.Split(topic, ",")[0],
		SubscriptionID: strings.Split(sub, ",")[0],
	})

	msg := &pubsub.OutboundMessage{Payload: []byte("external emulator check")}
	require.NoError(t, session.Publish(t.Context(), msg))
	assert.NotEmpty(t, msg.ServerMessageID)

	result, err := session.Pull(t.Context())
	require.NoError(t, err)
	assert.True(t, result.ReceivedOK)
}
