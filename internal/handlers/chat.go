package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forum-chat/internal/guard"
	"forum-chat/internal/models"
	"forum-chat/internal/observability"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
	"forum-chat/internal/telemetry"
)

// ChatHandler serves the request-style chat endpoints.
type ChatHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	guard    *guard.Guard
	sessions session.Provider
	audit    *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, g *guard.Guard, sessions session.Provider, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{
		rooms:    rooms,
		messages: messages,
		guard:    g,
		sessions: sessions,
		audit:    audit,
	}
}

// RequestChat resolves or creates the room for the caller and the requested
// user, then redirects to the room's detail view.
func (h *ChatHandler) RequestChat(c *gin.Context) {
	otherID, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	room, created, err := h.rooms.ResolveOrCreate(c.Request.Context(), userID, otherID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSelfPair):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		case errors.Is(err, repositories.ErrInvalidUserID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve chat room"})
		}
		return
	}

	if created {
		observability.IncRoomResolved("created")
		h.audit.Emit(c.Request.Context(), "INFO",
			fmt.Sprintf("room %d created for users %d and %d", room.ID, room.User1ID, room.User2ID),
			requestIDFromContext(c), userID)
	} else {
		observability.IncRoomResolved("existing")
	}

	c.Redirect(http.StatusFound, "/chat/detail/"+strconv.Itoa(room.ID))
}

// ListRooms returns the caller's rooms with peer display names.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID := c.GetInt("userID")

	rooms, err := h.rooms.ListRooms(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat rooms"})
		return
	}

	type roomResponse struct {
		RoomID       int       `json:"room_id"`
		PeerID       int       `json:"peer_id"`
		PeerUsername string    `json:"peer_username,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
	}

	responses := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, roomResponse{
			RoomID:       room.RoomID,
			PeerID:       room.PeerID,
			PeerUsername: h.peerName(c, room.PeerID),
			CreatedAt:    room.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"rooms": responses})
}

// RoomDetail returns the room plus its full message history. Non-members get
// a denial with no message content.
func (h *ChatHandler) RoomDetail(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := c.GetInt("userID")
	room, err := h.guard.Room(c.Request.Context(), userID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, guard.ErrNotMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this chat"})
		case errors.Is(err, repositories.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		}
		return
	}

	msgs, err := h.messages.List(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"room": room, "messages": msgs})
}

func (h *ChatHandler) peerName(c *gin.Context, peerID int) string {
	ident, err := h.sessions.Lookup(c.Request.Context(), peerID)
	if err != nil {
		return ""
	}
	return ident.Username
}
