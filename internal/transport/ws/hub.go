package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Hub is the presence registry: it owns the identity → live connections
// map and fans events out to a user's connections. All mutations happen
// on the Run goroutine, so no lock is needed.
type Hub struct {
	// clients maps userID → the user's open connections. A user may be
	// connected from several devices at once.
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	deliver    chan *delivery
}

type delivery struct {
	userID uuid.UUID
	data   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *delivery, 256),
	}
}

// Run starts the Hub's main event loop and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			conns, online := h.clients[client.userID]
			if !online {
				conns = make(map[*Client]struct{})
				h.clients[client.userID] = conns
			}
			conns[client] = struct{}{}
			log.Printf("ws hub: user %s connected (%d users online)", client.userID, len(h.clients))

			// The user's first connection changes the presence list.
			if !online {
				h.broadcastPresenceList()
			}

		case client := <-h.unregister:
			conns, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, ok := conns[client]; !ok {
				continue
			}
			delete(conns, client)
			close(client.send)
			close(client.done)

			if len(conns) == 0 {
				delete(h.clients, client.userID)
				log.Printf("ws hub: user %s disconnected (%d users online)", client.userID, len(h.clients))
				h.broadcastPresenceList()
			}

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				h.send(client, d.data)
			}

		case <-ctx.Done():
			return
		}
	}
}

// NotifyUser queues an event for every live connection of a user. A
// user with no connections misses the event; nothing is queued for
// later.
func (h *Hub) NotifyUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	select {
	case h.deliver <- &delivery{userID: userID, data: data}:
	default:
		// Fan-out is best-effort: drop rather than block the caller.
	}
}

// broadcastPresenceList pushes the full online-id list to every
// connection, the newcomer included.
func (h *Hub) broadcastPresenceList() {
	online := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		online = append(online, id)
	}

	evt, err := NewEvent(EventTypePresenceList, PresenceListPayload{Online: online})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}

	for _, conns := range h.clients {
		for client := range conns {
			h.send(client, data)
		}
	}
}

// send hands data to a client's write pump, dropping the connection if
// its buffer is full.
func (h *Hub) send(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		conns := h.clients[client.userID]
		delete(conns, client)
		close(client.send)
		close(client.done)
		if len(conns) == 0 {
			delete(h.clients, client.userID)
			h.broadcastPresenceList()
		}
	}
}
