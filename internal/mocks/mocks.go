package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"forum-chat/internal/models"
	"forum-chat/internal/repositories"
	"forum-chat/internal/session"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ResolveOrCreate(ctx context.Context, userID int, otherID int) (models.Room, bool, error) {
	args := m.Called(ctx, userID, otherID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Bool(1), args.Error(2)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, roomID int, authorID int, authorName string, body string) (models.Message, error) {
	args := m.Called(ctx, roomID, authorID, authorName, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) List(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type SessionProviderMock struct {
	mock.Mock
}

func (m *SessionProviderMock) Resolve(ctx context.Context, token string) (session.Identity, error) {
	args := m.Called(ctx, token)
	var ident session.Identity
	if val := args.Get(0); val != nil {
		ident = val.(session.Identity)
	}
	return ident, args.Error(1)
}

func (m *SessionProviderMock) Lookup(ctx context.Context, userID int) (session.Identity, error) {
	args := m.Called(ctx, userID)
	var ident session.Identity
	if val := args.Get(0); val != nil {
		ident = val.(session.Identity)
	}
	return ident, args.Error(1)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ session.Provider = (*SessionProviderMock)(nil)
