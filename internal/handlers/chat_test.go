package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forum-chat/internal/guard"
	"forum-chat/internal/middleware"
	"forum-chat/internal/mocks"
	"forum-chat/internal/models"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
)

func newHandler(rooms *mocks.RoomRepositoryMock, messages *mocks.MessageRepositoryMock, sessions *mocks.SessionProviderMock) *ChatHandler {
	return NewChatHandler(rooms, messages, guard.New(rooms), sessions, nil)
}

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("username", "alice")
		c.Next()
	})
	r.GET("/chat/request", handler.RequestChat)
	r.GET("/chat/list", handler.ListRooms)
	r.GET("/chat/detail/:room_id", handler.RoomDetail)
	return r
}

func TestRequestChatCreatesRoomAndRedirects(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := newHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	room := models.Room{ID: 42, User1ID: 1, User2ID: 2}
	rooms.On("ResolveOrCreate", mock.Anything, 1, 2).Return(room, true, nil).Once()
	rooms.On("ResolveOrCreate", mock.Anything, 1, 2).Return(room, false, nil).Once()

	// First contact creates the room.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/request?id=2", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/chat/detail/42", rec.Header().Get("Location"))

	// A second request resolves to the same room.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/request?id=2", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/chat/detail/42", rec.Header().Get("Location"))

	rooms.AssertExpectations(t)
}

func TestRequestChatRejectsSelfPair(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := newHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	rooms.On("ResolveOrCreate", mock.Anything, 1, 1).Return(models.Room{}, false, repositories.ErrSelfPair).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/request?id=1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rooms.AssertExpectations(t)
}

func TestRequestChatRejectsMalformedID(t *testing.T) {
	handler := newHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/request?id=abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestChatUnauthenticatedRedirectsToLogin(t *testing.T) {
	sessions := new(mocks.SessionProviderMock)
	handler := newHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), sessions)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/chat/request", middleware.Auth(sessions, true), handler.RequestChat)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/request?id=2", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestListRoomsResolvesPeerNames(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	sessions := new(mocks.SessionProviderMock)
	handler := newHandler(rooms, new(mocks.MessageRepositoryMock), sessions)
	router := setupChatRouter(handler)

	rooms.On("ListRooms", mock.Anything, 1).Return([]models.RoomSummary{{RoomID: 3, PeerID: 2}}, nil).Once()
	sessions.On("Lookup", mock.Anything, 2).Return(session.Identity{UserID: 2, Username: "bob"}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rooms []struct {
			RoomID       int    `json:"room_id"`
			PeerID       int    `json:"peer_id"`
			PeerUsername string `json:"peer_username"`
		} `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, 3, resp.Rooms[0].RoomID)
	assert.Equal(t, "bob", resp.Rooms[0].PeerUsername)

	rooms.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestListRoomsPeerNameUnknownIsOmitted(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	sessions := new(mocks.SessionProviderMock)
	handler := newHandler(rooms, new(mocks.MessageRepositoryMock), sessions)
	router := setupChatRouter(handler)

	rooms.On("ListRooms", mock.Anything, 1).Return([]models.RoomSummary{{RoomID: 3, PeerID: 9}}, nil).Once()
	sessions.On("Lookup", mock.Anything, 9).Return(session.Identity{}, session.ErrUnknownUser).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "peer_username")
}

func TestRoomDetailDeniedForNonMember(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newHandler(rooms, messages, new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	// Caller (user 1) is not a member of room 5.
	rooms.On("GetRoom", mock.Anything, 5).Return(models.Room{ID: 5, User1ID: 2, User2ID: 3}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/detail/5", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "messages")
	messages.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRoomDetailUnknownRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	handler := newHandler(rooms, new(mocks.MessageRepositoryMock), new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	rooms.On("GetRoom", mock.Anything, 404).Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/detail/404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomDetailReturnsHistoryInOrder(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	messages := new(mocks.MessageRepositoryMock)
	handler := newHandler(rooms, messages, new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	room := models.Room{ID: 5, User1ID: 1, User2ID: 2}
	rooms.On("GetRoom", mock.Anything, 5).Return(room, nil).Once()
	messages.On("List", mock.Anything, 5).Return([]models.Message{
		{ID: 1, RoomID: 5, AuthorID: 1, AuthorName: "alice", Body: "hi"},
		{ID: 2, RoomID: 5, AuthorID: 2, AuthorName: "bob", Body: "hello"},
	}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/detail/5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Room     models.Room      `json:"room"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 5, resp.Room.ID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "hi", resp.Messages[0].Body)
	assert.Equal(t, "hello", resp.Messages[1].Body)

	rooms.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestRoomDetailInvalidID(t *testing.T) {
	handler := newHandler(new(mocks.RoomRepositoryMock), new(mocks.MessageRepositoryMock), new(mocks.SessionProviderMock))
	router := setupChatRouter(handler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/detail/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
