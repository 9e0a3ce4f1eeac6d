package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"forum-chat/internal/guard"
	"forum-chat/internal/middleware"
	"forum-chat/internal/models"
	"forum-chat/internal/observability"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
)

// Handler upgrades websocket connections and drives their read loops.
type Handler struct {
	hub      *Hub
	sessions session.Provider
}

// NewHandler constructs a websocket Handler.
func NewHandler(hub *Hub, sessions session.Provider) *Handler {
	return &Handler{hub: hub, sessions: sessions}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientFrame is the client→server event shape. From is advisory only; the
// authenticated identity always wins.
type clientFrame struct {
	Type string `json:"type"`
	Room int    `json:"room"`
	Body string `json:"body"`
	From string `json:"from"`
}

// Handle authenticates, upgrades and runs the connection until it drops.
// The connection starts unjoined; join and message frames drive the hub.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("forum-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := middleware.BearerToken(c)
	ident, err := h.sessions.Resolve(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      ident.UserID,
		Username:    ident.Username,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := NewClient(conn, ident, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishLifecycle(ctx, client, "ws_connect", "")

	// The request context dies as soon as Handle returns, which would fail
	// every later guard and store call on this connection. The read loop
	// gets a connection-scoped context that keeps the handshake's trace
	// values but lives until the socket closes.
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	go h.readLoop(connCtx, cancel, client, conn)
}

func (h *Handler) readLoop(ctx context.Context, cancel context.CancelFunc, client *Client, conn *websocket.Conn) {
	var closeReason string
	defer func() {
		cancel()
		h.hub.Leave(client)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishLifecycle(ctx, client, "ws_disconnect", closeReason)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishLifecycle(ctx, client, "ws_error", closeReason)
			}
			return
		}
		h.dispatch(ctx, client, raw)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		_ = client.Send(models.ChatEvent{Type: "error", Error: "malformed frame"})
		return
	}

	switch frame.Type {
	case "join":
		if err := h.hub.Join(ctx, client, frame.Room); err != nil {
			_ = client.Send(models.ChatEvent{Type: "error", Room: frame.Room, Error: denialReason(err)})
			return
		}
		observability.IncWSEvent("join")
	case "message":
		if _, err := h.hub.Publish(ctx, client.Identity, frame.Room, frame.Body); err != nil {
			_ = client.Send(models.ChatEvent{Type: "error", Room: frame.Room, Error: denialReason(err)})
			return
		}
		observability.IncWSEvent("publish")
	default:
		_ = client.Send(models.ChatEvent{Type: "error", Error: "unknown event type"})
	}
}

// denialReason maps internal errors to client-safe reasons without leaking
// store detail.
func denialReason(err error) string {
	switch {
	case errors.Is(err, guard.ErrNotMember):
		return "not a room member"
	case errors.Is(err, repositories.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, repositories.ErrEmptyBody):
		return "message body is empty"
	default:
		return "internal error"
	}
}

func (h *Handler) publishLifecycle(ctx context.Context, client *Client, event, reason string) {
	info := client.Info
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
