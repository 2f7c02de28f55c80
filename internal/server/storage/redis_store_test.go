package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_SaveLoadDeleteLobby(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	lobbyData := &LobbyData{
		ID:         "ABC123",
		Phase:      1,
		HostID:     "p1",
		MinPlayers: 3,
		Players: []PlayerData{
			{ID: "p1", Name: "Ann", HandSize: 12, IsTurn: true, Connected: true},
		},
		CreatedAt: time.Now().Unix(),
	}

	// Save
	require.NoError(t, store.SaveLobby(ctx, lobbyData))
	assert.True(t, mr.Exists(lobbyKeyPrefix+"ABC123"))

	// Load
	loaded, err := store.LoadLobby(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, lobbyData.HostID, loaded.HostID)
	assert.Equal(t, lobbyData.Players, loaded.Players)

	ids, err := store.ListLobbyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC123"}, ids)

	// Delete
	require.NoError(t, store.DeleteLobby(ctx, "ABC123"))

	loaded, err = store.LoadLobby(ctx, "ABC123")
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	ids, err = store.ListLobbyIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_SaveNil(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()

	assert.NoError(t, store.SaveLobby(context.Background(), nil))
}

func TestRedisStore_Expiration(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()

	require.NoError(t, store.SaveLobby(context.Background(), &LobbyData{ID: "X"}))
	assert.Equal(t, lobbyExpiration, mr.TTL(lobbyKeyPrefix+"X"))
}

func TestRedisStore_PurgeLobbies(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, store.SaveLobby(ctx, &LobbyData{ID: id}))
	}

	n, err := store.PurgeLobbies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ids, err := store.ListLobbyIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_LoadCorrupt(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	defer mr.Close()

	require.NoError(t, mr.Set(lobbyKeyPrefix+"BAD", "{not json"))
	_, err := store.LoadLobby(context.Background(), "BAD")
	assert.Error(t, err)
}
