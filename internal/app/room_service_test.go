package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tienlen/internal/domain"
)

func seedUser(t *testing.T, store *memStore, id, name string) {
	t.Helper()
	require.NoError(t, store.SaveUser(context.Background(), &domain.User{ID: id, Name: name, CreatedAt: time.Now()}))
}

func TestCreateRoom_SeatsCreatorAsHost(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "u1", "Alice")
	svc := NewRoomService(store, 1)

	room, playerID, err := svc.CreateRoom(context.Background(), "u1", 4, "")
	require.NoError(t, err)
	require.Len(t, room.Code, 6)
	require.Equal(t, playerID, room.HostID)
	require.Len(t, room.Players, 1)
	require.Equal(t, 0, room.Players[0].Seat)
	require.True(t, room.Players[0].IsHost)
	require.Empty(t, room.PasswordHash)
}

func TestCreateRoom_MaxPlayersOutOfRangeRejected(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "u1", "Alice")
	svc := NewRoomService(store, 1)

	_, _, err := svc.CreateRoom(context.Background(), "u1", 1, "")
	require.ErrorIs(t, err, ErrInvalidMaxPlayers)

	_, _, err = svc.CreateRoom(context.Background(), "u1", 5, "")
	require.ErrorIs(t, err, ErrInvalidMaxPlayers)
}

func TestCreateRoom_MaxGamesUsesConfiguredDefault(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "u1", "Alice")
	svc := NewRoomService(store, 3)

	room, _, err := svc.CreateRoom(context.Background(), "u1", 4, "")
	require.NoError(t, err)
	require.Equal(t, 3, room.MaxGames)
}

func TestCreateRoom_UnknownUserFails(t *testing.T) {
	store := newMemStore()
	svc := NewRoomService(store, 1)
	_, _, err := svc.CreateRoom(context.Background(), "ghost", 4, "")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestJoinRoom_AssignsLowestFreeSeat(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "host", "Host")
	seedUser(t, store, "guest", "Guest")
	svc := NewRoomService(store, 1)
	ctx := context.Background()

	room, _, err := svc.CreateRoom(ctx, "host", 4, "")
	require.NoError(t, err)

	joined, playerID, err := svc.JoinRoom(ctx, room.Code, "guest", "")
	require.NoError(t, err)
	var seat int
	for _, p := range joined.Players {
		if p.ID == playerID {
			seat = p.Seat
		}
	}
	require.Equal(t, 1, seat)
}

func TestJoinRoom_WrongPasswordRejected(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "host", "Host")
	seedUser(t, store, "guest", "Guest")
	svc := NewRoomService(store, 1)
	ctx := context.Background()

	room, _, err := svc.CreateRoom(ctx, "host", 4, "secret")
	require.NoError(t, err)

	_, _, err = svc.JoinRoom(ctx, room.Code, "guest", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, _, err = svc.JoinRoom(ctx, room.Code, "guest", "secret")
	require.NoError(t, err)
}

func TestJoinRoom_RoomFullRejected(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "host", "Host")
	svc := NewRoomService(store, 1)
	ctx := context.Background()

	room, _, err := svc.CreateRoom(ctx, "host", 2, "")
	require.NoError(t, err)

	for i := 0; i < 1; i++ {
		id := "guest" + string(rune('0'+i))
		seedUser(t, store, id, "Guest")
		_, _, err := svc.JoinRoom(ctx, room.Code, id, "")
		require.NoError(t, err)
	}

	seedUser(t, store, "overflow", "Overflow")
	_, _, err = svc.JoinRoom(ctx, room.Code, "overflow", "")
	require.ErrorIs(t, err, ErrRoomFull)
}

func TestLeaveRoom_HostMigratesToLowestSeat(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "host", "Host")
	seedUser(t, store, "guest1", "Guest1")
	seedUser(t, store, "guest2", "Guest2")
	svc := NewRoomService(store, 1)
	ctx := context.Background()

	room, hostID, err := svc.CreateRoom(ctx, "host", 4, "")
	require.NoError(t, err)
	_, g1ID, err := svc.JoinRoom(ctx, room.Code, "guest1", "")
	require.NoError(t, err)
	_, _, err = svc.JoinRoom(ctx, room.Code, "guest2", "")
	require.NoError(t, err)

	updated, err := svc.LeaveRoom(ctx, room.Code, hostID)
	require.NoError(t, err)
	require.Equal(t, g1ID, updated.HostID)
	for _, p := range updated.Players {
		if p.ID == g1ID {
			require.True(t, p.IsHost)
		}
	}
}

func TestLeaveRoom_LastPlayerDeletesRoom(t *testing.T) {
	store := newMemStore()
	seedUser(t, store, "host", "Host")
	svc := NewRoomService(store, 1)
	ctx := context.Background()

	room, hostID, err := svc.CreateRoom(ctx, "host", 4, "")
	require.NoError(t, err)

	updated, err := svc.LeaveRoom(ctx, room.Code, hostID)
	require.NoError(t, err)
	require.Nil(t, updated)

	gone, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	require.Nil(t, gone)
}
