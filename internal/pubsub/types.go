package pubsub

// TopicRef identifies the resources an operation targets. Publish needs
// ProjectID and TopicName; Pull needs ProjectID and SubscriptionID.
type TopicRef struct {
	ProjectID      string
	TopicName      string
	SubscriptionID string
}

// OutboundMessage is a message to publish. Publish records its result in
// Accepted, Failed and ServerMessageID. A message must not be published by
// two calls at once.
type OutboundMessage struct {
	Payload    []byte
	Attributes map[string]string

	Accepted        bool
	Failed          bool
	ServerMessageID string
}

// InboundMessage is a message received from a pull.
type InboundMessage struct {
	RawPayload      []byte
	ServerMessageID string
	PublishTime     string
}

// PullResult is owned by the caller once Pull returns. Messages keep the
// order the service returned them in. Skipped counts elements of the
// response that were dropped because they were incomplete.
type PullResult struct {
	Messages      []InboundMessage
	ReceivedOK    bool
	ReceivedError bool
	Skipped       int
}
