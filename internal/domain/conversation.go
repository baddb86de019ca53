package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the unique thread for an unordered pair of users.
// User1ID/User2ID are stored in canonical (sorted) order so the pair
// key is order-independent.
type Conversation struct {
	ID            uuid.UUID `json:"id"`
	User1ID       uuid.UUID `json:"user1_id"`
	User2ID       uuid.UUID `json:"user2_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`
	// Joined fields for frontend
	OtherUser UserSummary `json:"other_user"`
}

type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	Body           string    `json:"body"`
	Seen           bool      `json:"seen"`
	CreatedAt      time.Time `json:"created_at"`
	// Joined fields
	Sender UserSummary `json:"sender"`
}
