package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"forum-chat/internal/guard"
	"forum-chat/internal/models"
	"forum-chat/internal/observability"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
)

// Hub owns the per-room subscriber registry and routes published messages to
// live connections. Every join and publish re-validates membership through
// the access guard; client-supplied room ids are never trusted.
type Hub struct {
	guard    *guard.Guard
	messages repositories.MessageRepository

	mu     sync.RWMutex
	rooms  map[int]*roomState
	joined map[*Client]int
}

// roomState holds one room's subscribers and its publish lock. States are
// kept for the process lifetime once created; recreating them would let two
// concurrent publishers hold different locks and reorder broadcasts.
type roomState struct {
	publishMu   sync.Mutex
	subscribers map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub(g *guard.Guard, messages repositories.MessageRepository) *Hub {
	return &Hub{
		guard:    g,
		messages: messages,
		rooms:    make(map[int]*roomState),
		joined:   make(map[*Client]int),
	}
}

// Join subscribes the client to the room's broadcasts after re-validating
// membership. A client joined elsewhere is moved; on failure the client is
// left unjoined from the requested room.
func (h *Hub) Join(ctx context.Context, c *Client, roomID int) error {
	if err := h.guard.Require(ctx, c.Identity.UserID, roomID); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
	h.roomLocked(roomID).subscribers[c] = true
	h.joined[c] = roomID
	return nil
}

// Leave removes the client from whatever room it occupies.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	h.detachLocked(c)
	h.mu.Unlock()
}

// Publish re-validates membership, appends the message to the store and
// broadcasts it to the room's current subscribers. The per-room publish lock
// serializes concurrent publishers so broadcast order always equals
// persistence order; other rooms proceed independently.
func (h *Hub) Publish(ctx context.Context, author session.Identity, roomID int, body string) (models.Message, error) {
	if err := h.guard.Require(ctx, author.UserID, roomID); err != nil {
		return models.Message{}, err
	}

	h.mu.Lock()
	rs := h.roomLocked(roomID)
	h.mu.Unlock()

	rs.publishMu.Lock()
	defer rs.publishMu.Unlock()

	msg, err := h.messages.Append(ctx, roomID, author.UserID, author.Username, body)
	if err != nil {
		return models.Message{}, err
	}
	observability.IncMessagePersisted()

	h.broadcast(rs, msg)
	return msg, nil
}

// Joined reports the room the client currently occupies, if any.
func (h *Hub) Joined(c *Client) (int, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	roomID, ok := h.joined[c]
	return roomID, ok
}

// broadcast delivers best-effort: a failed subscriber is dropped, the rest
// still receive the message. The subscriber set is snapshotted under the
// registry lock and written to after releasing it, so a stalled socket can
// hold up its own room at worst, never joins or other rooms. Caller holds
// the room's publish lock, which keeps frames in append order.
func (h *Hub) broadcast(rs *roomState, msg models.Message) {
	event := models.ChatEvent{
		Type:    "broadcast",
		Room:    msg.RoomID,
		Body:    msg.Body,
		From:    msg.AuthorName,
		Message: &msg,
	}
	payload, _ := json.Marshal(event)

	h.mu.RLock()
	subscribers := make([]*Client, 0, len(rs.subscribers))
	for c := range rs.subscribers {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	for _, c := range subscribers {
		if err := c.write(payload); err != nil {
			log.Printf("websocket write error: %v", err)
			h.Leave(c)
			_ = c.Close()
		}
	}
}

func (h *Hub) roomLocked(roomID int) *roomState {
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = &roomState{subscribers: make(map[*Client]bool)}
		h.rooms[roomID] = rs
	}
	return rs
}

func (h *Hub) detachLocked(c *Client) {
	roomID, ok := h.joined[c]
	if !ok {
		return
	}
	delete(h.joined, c)
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs.subscribers, c)
	}
}
