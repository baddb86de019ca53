package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeSendMessage = "send-message"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypePresenceList = "presence-list"
	EventTypeNewMessage   = "new-message"
	EventTypeNotification = "notification"
	EventTypePong         = "pong"
	EventTypeError        = "error"
)

// Notification kinds
const (
	NotificationLike   = "like"
	NotificationFollow = "follow"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type SendMessagePayload struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text"`
}

// --- Server → Client payloads ---

// PresenceListPayload carries the full set of currently online user
// ids; clients replace their presence state with it wholesale.
type PresenceListPayload struct {
	Online []uuid.UUID `json:"online"`
}

type NewMessagePayload struct {
	domain.Message
}

// NotificationPayload identifies an event by (type, actor, subject);
// like notifications are emitted at most once per like cycle because
// the like itself is idempotent.
type NotificationPayload struct {
	Kind   string             `json:"kind"`
	Actor  domain.UserSummary `json:"actor"`
	PostID *uuid.UUID         `json:"post_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
