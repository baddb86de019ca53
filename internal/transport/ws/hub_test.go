package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacic/picstream/internal/domain"
)

// Tests drive the hub with clients that have no live connection; the
// hub only ever touches a client's channels and user id.

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(hub *Hub, userID uuid.UUID) *Client {
	client := NewClient(hub, nil, nil, userID)
	hub.register <- client
	return client
}

func recvEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func recvPresence(t *testing.T, c *Client) []uuid.UUID {
	t.Helper()
	evt := recvEvent(t, c)
	require.Equal(t, EventTypePresenceList, evt.Type)
	var p PresenceListPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	return p.Online
}

func TestHubPresence(t *testing.T) {
	hub := startHub(t)
	anaID, benID := uuid.New(), uuid.New()

	ana := connect(hub, anaID)
	assert.ElementsMatch(t, []uuid.UUID{anaID}, recvPresence(t, ana))

	ben := connect(hub, benID)
	assert.ElementsMatch(t, []uuid.UUID{anaID, benID}, recvPresence(t, ana))
	assert.ElementsMatch(t, []uuid.UUID{anaID, benID}, recvPresence(t, ben))

	hub.unregister <- ben
	assert.ElementsMatch(t, []uuid.UUID{anaID}, recvPresence(t, ana))

	// The departed client's channels are closed.
	select {
	case _, ok := <-ben.done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("done channel not closed")
	}
}

func TestHubMultiDevice(t *testing.T) {
	hub := startHub(t)
	anaID := uuid.New()

	phone := connect(hub, anaID)
	recvPresence(t, phone)

	// A second device for the same user does not change presence.
	laptop := connect(hub, anaID)

	evt, err := NewEvent(EventTypeNotification, NotificationPayload{Kind: NotificationFollow})
	require.NoError(t, err)
	hub.NotifyUser(anaID, evt)

	// Both devices get the event; the laptop never saw a presence
	// update because the user was already online when it connected.
	assert.Equal(t, EventTypeNotification, recvEvent(t, phone).Type)
	assert.Equal(t, EventTypeNotification, recvEvent(t, laptop).Type)

	// Dropping one device keeps the user online; presence changes only
	// when the last connection goes.
	hub.unregister <- phone
	hub.NotifyUser(anaID, evt)
	assert.Equal(t, EventTypeNotification, recvEvent(t, laptop).Type)
}

func TestHubNotifyOfflineUser(t *testing.T) {
	hub := startHub(t)

	evt, err := NewEvent(EventTypeNotification, NotificationPayload{Kind: NotificationLike})
	require.NoError(t, err)
	// Nothing is queued for an offline user; this simply must not block.
	hub.NotifyUser(uuid.New(), evt)
}

func TestHubNotifier(t *testing.T) {
	hub := startHub(t)
	notifier := NewHubNotifier(hub)

	anaID, benID := uuid.New(), uuid.New()
	ana := connect(hub, anaID)
	recvPresence(t, ana)

	actor := domain.UserSummary{ID: benID, Username: "ben"}
	postID := uuid.New()

	notifier.NotifyFollow(anaID, actor)
	evt := recvEvent(t, ana)
	require.Equal(t, EventTypeNotification, evt.Type)
	var follow NotificationPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &follow))
	assert.Equal(t, NotificationFollow, follow.Kind)
	assert.Equal(t, "ben", follow.Actor.Username)
	assert.Nil(t, follow.PostID)

	notifier.NotifyLike(anaID, actor, postID)
	evt = recvEvent(t, ana)
	require.Equal(t, EventTypeNotification, evt.Type)
	var like NotificationPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &like))
	assert.Equal(t, NotificationLike, like.Kind)
	require.NotNil(t, like.PostID)
	assert.Equal(t, postID, *like.PostID)
}

func TestHubNotifierNewMessageEchoesSender(t *testing.T) {
	hub := startHub(t)
	notifier := NewHubNotifier(hub)

	anaID, benID := uuid.New(), uuid.New()
	ana := connect(hub, anaID)
	recvPresence(t, ana)
	ben := connect(hub, benID)
	recvPresence(t, ana)
	recvPresence(t, ben)

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   anaID,
		ReceiverID: benID,
		Body:       "hey",
	}
	notifier.NotifyNewMessage(msg)

	// Receiver and sender both get the message, so the sender's other
	// devices stay in sync.
	for _, c := range []*Client{ben, ana} {
		evt := recvEvent(t, c)
		require.Equal(t, EventTypeNewMessage, evt.Type)
		var p NewMessagePayload
		require.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, msg.ID, p.ID)
		assert.Equal(t, "hey", p.Body)
	}
}
