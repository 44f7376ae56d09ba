// Package emulator is an in-memory stand-in for the Pub/Sub REST API. It
// speaks the same JSON wire format as the service, so the client can be
// exercised locally and in tests.
package emulator

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dipjyotimetia/pubsub-client/pkg/logger"
)

type subscription struct {
	name    string
	topic   string
	backlog []*pubsubpb.ReceivedMessage
}

// Emulator holds topics, subscriptions and undelivered messages in memory.
// Delivered messages are removed from the backlog immediately.
type Emulator struct {
	mu            sync.Mutex
	topics        map[string]bool
	subscriptions map[string]*subscription
	nextID        uint64
	messages      []MessageInfo
	maxMessages   int
	closed        bool

	wsClients    map[*websocket.Conn]bool
	wsClientsMux sync.Mutex
	broadcast    chan []byte

	metrics *metrics
	log     *logger.Logger
}

// New creates an empty emulator and starts its websocket broadcaster
func New(log *logger.Logger) *Emulator {
	e := &Emulator{
		topics:        make(map[string]bool),
		subscriptions: make(map[string]*subscription),
		messages:      make([]MessageInfo, 0),
		maxMessages:   1000,
		wsClients:     make(map[*websocket.Conn]bool),
		broadcast:     make(chan []byte, 256),
		metrics:       newMetrics(),
		log:           log,
	}

	go e.handleBroadcast()

	return e
}

// Close stops the broadcaster and disconnects websocket clients
func (e *Emulator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.broadcast)
}

func topicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

func subscriptionName(projectID, subscriptionID string) string {
	return fmt.Sprintf("projects/%s/subscriptions/%s", projectID, subscriptionID)
}

// CreateTopic registers a topic
func (e *Emulator) CreateTopic(projectID, topicID string) (string, error) {
	name := topicName(projectID, topicID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.topics[name] {
		return "", fmt.Errorf("%w: topic %s", errAlreadyExists, name)
	}
	e.topics[name] = true
	e.log.Info("Created topic: %s", name)
	return name, nil
}

// CreateSubscription attaches a new subscription to an existing topic
func (e *Emulator) CreateSubscription(projectID, subscriptionID, topic string) (string, error) {
	name := subscriptionName(projectID, subscriptionID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.topics[topic] {
		return "", fmt.Errorf("%w: topic %s", errNotFound, topic)
	}
	if _, ok := e.subscriptions[name]; ok {
		return "", fmt.Errorf("%w: subscription %s", errAlreadyExists, name)
	}
	e.subscriptions[name] = &subscription{name: name, topic: topic}
	e.log.Info("Created subscription: %s", name)
	return name, nil
}

// CreateTopicsAndSubscriptions creates topic/subscription pairs, logging and
// skipping pairs that fail
func (e *Emulator) CreateTopicsAndSubscriptions(projectID string, topicIDs, subscriptionIDs []string) error {
	if len(topicIDs) != len(subscriptionIDs) {
		return fmt.Errorf("number of topics and subscriptions must match")
	}

	for i := range topicIDs {
		topic, err := e.CreateTopic(projectID, topicIDs[i])
		if err != nil {
			e.log.Warn("Failed to create topic %s: %v", topicIDs[i], err)
			continue
		}

		if _, err := e.CreateSubscription(projectID, subscriptionIDs[i], topic); err != nil {
			e.log.Warn("Failed to create subscription %s: %v", subscriptionIDs[i], err)
			continue
		}

		e.log.Info("Successfully created topic/subscription pair: %s/%s", topic, subscriptionIDs[i])
	}

	return nil
}

// Publish stores msgs on every subscription of topic and returns their ids
func (e *Emulator) Publish(topic string, msgs []*pubsubpb.PubsubMessage) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.topics[topic] {
		return nil, fmt.Errorf("%w: topic %s", errNotFound, topic)
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		e.nextID++
		stored := proto.Clone(m).(*pubsubpb.PubsubMessage)
		stored.MessageId = strconv.FormatUint(e.nextID, 10)
		stored.PublishTime = timestamppb.New(now)

		for _, sub := range e.subscriptions {
			if sub.topic != topic {
				continue
			}
			sub.backlog = append(sub.backlog, &pubsubpb.ReceivedMessage{
				AckId:   uuid.NewString(),
				Message: proto.Clone(stored).(*pubsubpb.PubsubMessage),
			})
		}

		e.record(MessageInfo{
			ID:          stored.MessageId,
			Data:        string(stored.Data),
			Attributes:  stored.Attributes,
			PublishTime: now,
			Topic:       topic,
		})
		ids = append(ids, stored.MessageId)
	}

	e.metrics.published.WithLabelValues(topic).Add(float64(len(ids)))
	return ids, nil
}

// Pull removes up to maxMessages messages from the subscription backlog
func (e *Emulator) Pull(subscriptionName string, maxMessages int) ([]*pubsubpb.ReceivedMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subscriptions[subscriptionName]
	if !ok {
		return nil, fmt.Errorf("%w: subscription %s", errNotFound, subscriptionName)
	}

	n := max(0, min(maxMessages, len(sub.backlog)))
	out := sub.backlog[:n:n]
	sub.backlog = slices.Clone(sub.backlog[n:])

	e.metrics.delivered.WithLabelValues(subscriptionName).Add(float64(n))
	return out, nil
}

// record appends to the message log and notifies websocket clients.
// Callers hold e.mu.
func (e *Emulator) record(info MessageInfo) {
	e.messages = append(e.messages, info)
	if len(e.messages) > e.maxMessages {
		e.messages = e.messages[len(e.messages)-e.maxMessages:]
	}

	if e.closed {
		return
	}
	msgJSON, _ := json.Marshal(map[string]any{
		"type":    "new_message",
		"message": info,
	})
	select {
	case e.broadcast <- msgJSON:
	default:
		// Channel full, skip broadcast
	}
}

// GetMessages returns a copy of the message log
func (e *Emulator) GetMessages() []MessageInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	messages := make([]MessageInfo, len(e.messages))
	copy(messages, e.messages)
	return messages
}

// GetStats returns a snapshot of topics, subscriptions and message counts
func (e *Emulator) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := Stats{
		Topics:        make([]string, 0, len(e.topics)),
		Subscriptions: make([]string, 0, len(e.subscriptions)),
		TotalMessages: len(e.messages),
	}
	for name := range e.topics {
		stats.Topics = append(stats.Topics, name)
	}
	for name, sub := range e.subscriptions {
		stats.Subscriptions = append(stats.Subscriptions, name)
		stats.PendingMessages += len(sub.backlog)
	}
	slices.Sort(stats.Topics)
	slices.Sort(stats.Subscriptions)

	// Return last 20 messages
	start := max(0, len(e.messages)-20)
	stats.RecentMessages = slices.Clone(e.messages[start:])
	return stats
}
