package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateRejectsSelfPair(t *testing.T) {
	repo := NewRoomRepo(nil, time.Second)

	_, _, err := repo.ResolveOrCreate(context.Background(), 4, 4)
	require.ErrorIs(t, err, ErrSelfPair)
}

func TestResolveOrCreateRejectsMalformedIDs(t *testing.T) {
	repo := NewRoomRepo(nil, time.Second)

	cases := [][2]int{{0, 5}, {5, 0}, {-1, 5}, {5, -2}}
	for _, pair := range cases {
		_, _, err := repo.ResolveOrCreate(context.Background(), pair[0], pair[1])
		require.ErrorIs(t, err, ErrInvalidUserID, "pair %v", pair)
	}
}

func TestMapStoreErrTranslatesDeadline(t *testing.T) {
	require.ErrorIs(t, mapStoreErr(context.DeadlineExceeded), ErrStoreTimeout)
	require.NoError(t, mapStoreErr(nil))
	require.ErrorIs(t, mapStoreErr(ErrRoomNotFound), ErrRoomNotFound)
}
