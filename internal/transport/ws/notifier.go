package ws

import (
	"log"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
// Every method is fire-and-forget: a failed or missed delivery never
// reaches the originating mutation.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyFollow(targetID uuid.UUID, actor domain.UserSummary) {
	evt, err := NewEvent(EventTypeNotification, NotificationPayload{
		Kind:  NotificationFollow,
		Actor: actor,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.NotifyUser(targetID, evt)
}

func (n *HubNotifier) NotifyLike(targetID uuid.UUID, actor domain.UserSummary, postID uuid.UUID) {
	evt, err := NewEvent(EventTypeNotification, NotificationPayload{
		Kind:   NotificationLike,
		Actor:  actor,
		PostID: &postID,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.NotifyUser(targetID, evt)
}

// NotifyNewMessage pushes the message to every connection of the
// receiver and of the sender, so the sender's other devices stay in
// sync.
func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeNewMessage, NewMessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.NotifyUser(msg.ReceiverID, evt)
	n.hub.NotifyUser(msg.SenderID, evt)
}
