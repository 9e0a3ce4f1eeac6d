package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"forum-chat/internal/models"
	"forum-chat/internal/session"
)

// writeWait bounds a single frame write so one stalled subscriber cannot
// hold a room's broadcast loop.
const writeWait = 10 * time.Second

// Conn is the slice of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live connection. A client is joined to at most one room at
// a time; the hub owns the join state.
type Client struct {
	Identity session.Identity
	Info     ConnInfo

	conn    Conn
	writeMu sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn Conn, ident session.Identity, info ConnInfo) *Client {
	return &Client{Identity: ident, Info: info, conn: conn}
}

// Send marshals and writes one event. The write mutex serializes frames from
// the hub's broadcast path and the read loop's error replies.
func (c *Client) Send(event models.ChatEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.write(payload)
}

func (c *Client) write(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.conn.Close()
}
