package emulator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var (
	errNotFound      = errors.New("not found")
	errAlreadyExists = errors.New("already exists")
)

var (
	unmarshalOpts = protojson.UnmarshalOptions{DiscardUnknown: true}
	marshalOpts   = protojson.MarshalOptions{EmitUnpopulated: true}
)

// handleCreateTopic handles PUT /v1/projects/{project}/topics/{topic}
func (e *Emulator) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	name, err := e.CreateTopic(r.PathValue("project"), r.PathValue("topic"))
	if err != nil {
		e.writeStoreError(w, "create_topic", err)
		return
	}
	e.writeProto(w, "create_topic", &pubsubpb.Topic{Name: name})
}

// handleCreateSubscription handles PUT /v1/projects/{project}/subscriptions/{subscription}
func (e *Emulator) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req pubsubpb.Subscription
	if !e.readProto(w, r, "create_subscription", &req) {
		return
	}
	if req.Topic == "" {
		e.writeError(w, "create_subscription", http.StatusBadRequest, "INVALID_ARGUMENT", "topic is required")
		return
	}

	name, err := e.CreateSubscription(r.PathValue("project"), r.PathValue("subscription"), req.Topic)
	if err != nil {
		e.writeStoreError(w, "create_subscription", err)
		return
	}
	e.writeProto(w, "create_subscription", &pubsubpb.Subscription{
		Name:               name,
		Topic:              req.Topic,
		AckDeadlineSeconds: 10,
	})
}

// handleTopicAction handles POST /v1/projects/{project}/topics/{topic}:publish
func (e *Emulator) handleTopicAction(w http.ResponseWriter, r *http.Request) {
	topicID, action, _ := strings.Cut(r.PathValue("topic"), ":")
	if action != "publish" {
		e.writeError(w, "publish", http.StatusNotFound, "NOT_FOUND", "unknown topic method: "+action)
		return
	}

	var req pubsubpb.PublishRequest
	if !e.readProto(w, r, "publish", &req) {
		return
	}
	if len(req.Messages) == 0 {
		e.writeError(w, "publish", http.StatusBadRequest, "INVALID_ARGUMENT", "at least one message is required")
		return
	}

	ids, err := e.Publish(topicName(r.PathValue("project"), topicID), req.Messages)
	if err != nil {
		e.writeStoreError(w, "publish", err)
		return
	}
	e.writeProto(w, "publish", &pubsubpb.PublishResponse{MessageIds: ids})
}

// handleSubscriptionAction handles POST /v1/projects/{project}/subscriptions/{subscription}:pull
func (e *Emulator) handleSubscriptionAction(w http.ResponseWriter, r *http.Request) {
	subID, action, _ := strings.Cut(r.PathValue("subscription"), ":")
	if action != "pull" {
		e.writeError(w, "pull", http.StatusNotFound, "NOT_FOUND", "unknown subscription method: "+action)
		return
	}

	var req pubsubpb.PullRequest
	if !e.readProto(w, r, "pull", &req) {
		return
	}
	if req.MaxMessages <= 0 {
		e.writeError(w, "pull", http.StatusBadRequest, "INVALID_ARGUMENT", "maxMessages must be positive")
		return
	}

	received, err := e.Pull(subscriptionName(r.PathValue("project"), subID), int(req.MaxMessages))
	if err != nil {
		e.writeStoreError(w, "pull", err)
		return
	}
	e.writeProto(w, "pull", &pubsubpb.PullResponse{ReceivedMessages: received})
}

// handleStats returns topics, subscriptions and message counts
func (e *Emulator) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e.GetStats())
}

// handleMessages returns the published message log, optionally filtered by topic
func (e *Emulator) handleMessages(w http.ResponseWriter, r *http.Request) {
	messages := e.GetMessages()

	if topic := r.URL.Query().Get("topic"); topic != "" {
		filtered := make([]MessageInfo, 0, len(messages))
		for _, msg := range messages {
			if msg.Topic == topic {
				filtered = append(filtered, msg)
			}
		}
		messages = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// handleHealth returns health check status
func (e *Emulator) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// RegisterRoutes registers the REST API and the inspection endpoints on mux
func (e *Emulator) RegisterRoutes(mux *http.ServeMux) {
	api := func(h http.HandlerFunc) http.Handler {
		return BearerAuthMiddleware(e.log)(h)
	}

	mux.Handle("PUT /v1/projects/{project}/topics/{topic}", api(e.handleCreateTopic))
	mux.Handle("PUT /v1/projects/{project}/subscriptions/{subscription}", api(e.handleCreateSubscription))
	mux.Handle("POST /v1/projects/{project}/topics/{topic}", api(e.handleTopicAction))
	mux.Handle("POST /v1/projects/{project}/subscriptions/{subscription}", api(e.handleSubscriptionAction))

	mux.HandleFunc("GET /api/stats", e.handleStats)
	mux.HandleFunc("GET /api/messages", e.handleMessages)
	mux.HandleFunc("GET /api/health", e.handleHealth)
	mux.HandleFunc("GET /ws", e.HandleWebSocket)
	mux.Handle("GET /metrics", e.metrics.handler())
}

// Handler returns the emulator routes wrapped in logging and CORS middleware
func (e *Emulator) Handler() http.Handler {
	mux := http.NewServeMux()
	e.RegisterRoutes(mux)

	handler := HTTPLoggingMiddleware(e.log)(mux)
	return CORSMiddleware(handler)
}

func (e *Emulator) readProto(w http.ResponseWriter, r *http.Request, op string, m proto.Message) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		e.writeError(w, op, http.StatusBadRequest, "INVALID_ARGUMENT", "failed to read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := unmarshalOpts.Unmarshal(body, m); err != nil {
		e.writeError(w, op, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (e *Emulator) writeProto(w http.ResponseWriter, op string, m proto.Message) {
	body, err := marshalOpts.Marshal(m)
	if err != nil {
		e.writeError(w, op, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	e.metrics.requests.WithLabelValues(op, strconv.Itoa(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (e *Emulator) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, errNotFound):
		e.writeError(w, op, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errAlreadyExists):
		e.writeError(w, op, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	default:
		e.writeError(w, op, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func (e *Emulator) writeError(w http.ResponseWriter, op string, code int, status, message string) {
	e.metrics.requests.WithLabelValues(op, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(apiError{Error: apiErrorBody{
		Code:    code,
		Message: message,
		Status:  status,
	}})
}
