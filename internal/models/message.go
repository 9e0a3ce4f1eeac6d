package models

import "time"

// Message is one entry of a room's append-only log. The author's display
// name is denormalized at write time. Messages are never mutated.
type Message struct {
	ID         int       `db:"id" json:"id"`
	RoomID     int       `db:"room_id" json:"room"`
	AuthorID   int       `db:"author_id" json:"author"`
	AuthorName string    `db:"author_name" json:"author_name"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatEvent is the envelope exchanged over websocket connections.
type ChatEvent struct {
	Type    string   `json:"type"`
	Room    int      `json:"room,omitempty"`
	Body    string   `json:"body,omitempty"`
	From    string   `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}
