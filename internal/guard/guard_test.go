package guard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forum-chat/internal/guard"
	"forum-chat/internal/mocks"
	"forum-chat/internal/models"
	"forum-chat/internal/repositories"
)

func TestAuthorizeMembers(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	g := guard.New(rooms)

	rooms.On("GetRoom", mock.Anything, 9).Return(models.Room{ID: 9, User1ID: 1, User2ID: 2}, nil)

	ok, err := g.Authorize(context.Background(), 1, 9)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.Authorize(context.Background(), 2, 9)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = g.Authorize(context.Background(), 3, 9)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAuthorizeUnknownRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	g := guard.New(rooms)

	rooms.On("GetRoom", mock.Anything, 404).Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	_, err := g.Authorize(context.Background(), 1, 404)
	require.ErrorIs(t, err, repositories.ErrRoomNotFound)
	rooms.AssertExpectations(t)
}

func TestRoomReturnsRoomWithSingleLookup(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	g := guard.New(rooms)

	room := models.Room{ID: 9, User1ID: 1, User2ID: 2}
	rooms.On("GetRoom", mock.Anything, 9).Return(room, nil).Once()

	got, err := g.Room(context.Background(), 1, 9)
	require.NoError(t, err)
	require.Equal(t, room, got)
	rooms.AssertExpectations(t)
}

func TestRoomNonMemberGetsNoRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	g := guard.New(rooms)

	rooms.On("GetRoom", mock.Anything, 9).Return(models.Room{ID: 9, User1ID: 1, User2ID: 2}, nil).Once()

	got, err := g.Room(context.Background(), 7, 9)
	require.ErrorIs(t, err, guard.ErrNotMember)
	require.Zero(t, got)
}

func TestRequireNonMember(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	g := guard.New(rooms)

	rooms.On("GetRoom", mock.Anything, 9).Return(models.Room{ID: 9, User1ID: 1, User2ID: 2}, nil)

	require.NoError(t, g.Require(context.Background(), 1, 9))
	require.ErrorIs(t, g.Require(context.Background(), 7, 9), guard.ErrNotMember)
}
