package emulator

import (
	"time"
)

// MessageInfo is a published message as shown by the message log
type MessageInfo struct {
	ID          string            `json:"id"`
	Data        string            `json:"data"`
	Attributes  map[string]string `json:"attributes"`
	PublishTime time.Time         `json:"publish_time"`
	Topic       string            `json:"topic"`
}

// Stats summarises the emulator state
type Stats struct {
	Topics          []string      `json:"topics"`
	Subscriptions   []string      `json:"subscriptions"`
	TotalMessages   int           `json:"total_messages"`
	PendingMessages int           `json:"pending_messages"`
	RecentMessages  []MessageInfo `json:"recent_messages"`
}

type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
