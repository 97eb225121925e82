// internal/game/registry_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomAllocatesFourLetterCode(t *testing.T) {
	reg := NewRegistry()
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	require.Len(t, room.Code, 4)
	for _, c := range room.Code {
		assert.True(t, c >= 'A' && c <= 'Z', "code %q contains %q", room.Code, c)
	}
	assert.Equal(t, 1, reg.RoomCount())
}

func TestCreateRoomRetriesOnCodeCollision(t *testing.T) {
	codes := []string{"AAAA", "AAAA", "BBBB"}
	i := 0
	reg := NewRegistry(WithCodeGenerator(func() string {
		c := codes[i]
		i++
		return c
	}))

	r1, err := reg.CreateRoom()
	require.NoError(t, err)
	r2, err := reg.CreateRoom()
	require.NoError(t, err)

	assert.Equal(t, "AAAA", r1.Code)
	assert.Equal(t, "BBBB", r2.Code)
}

func TestCreateRoomCapacityCeiling(t *testing.T) {
	reg := NewRegistry(WithMaxRooms(2))
	_, err := reg.CreateRoom()
	require.NoError(t, err)
	_, err = reg.CreateRoom()
	require.NoError(t, err)

	_, err = reg.CreateRoom()
	assert.ErrorIs(t, err, ErrRoomCapacity)
}

func TestJoinIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry(WithCodeGenerator(func() string { return "GAME" }))
	created, err := reg.CreateRoom()
	require.NoError(t, err)
	created.BroadcastFn = (&mockBroadcaster{}).fn

	joined, err := reg.Join("  game ", uuid.New(), "A", false)
	require.NoError(t, err)
	assert.Same(t, created, joined)

	joined.Mu.Lock()
	defer joined.Mu.Unlock()
	assert.Len(t, joined.State.Players, 1)
}

func TestJoinUnknownCode(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Join("ZZZZ", uuid.New(), "A", false)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestHostJoinDoesNotEnterRoster(t *testing.T) {
	reg := NewRegistry(WithCodeGenerator(func() string { return "GAME" }))
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	room.BroadcastFn = (&mockBroadcaster{}).fn

	hostID := uuid.New()
	_, err = reg.Join("GAME", hostID, "", true)
	require.NoError(t, err)

	room.Mu.Lock()
	assert.Empty(t, room.State.Players)
	room.Mu.Unlock()

	// The host still receives broadcasts.
	assert.Contains(t, reg.Members("GAME"), hostID)
}

func TestRoomForRoutesConnectionActions(t *testing.T) {
	reg := NewRegistry(WithCodeGenerator(func() string { return "GAME" }))
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	room.BroadcastFn = (&mockBroadcaster{}).fn

	connID := uuid.New()
	_, err = reg.Join("GAME", connID, "A", false)
	require.NoError(t, err)

	got, ok := reg.RoomFor(connID)
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = reg.RoomFor(uuid.New())
	assert.False(t, ok)
}

func TestDisconnectRemovesPlayerAndSubscription(t *testing.T) {
	reg := NewRegistry(WithCodeGenerator(func() string { return "GAME" }))
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	room.BroadcastFn = (&mockBroadcaster{}).fn

	connID := uuid.New()
	_, err = reg.Join("GAME", connID, "A", false)
	require.NoError(t, err)

	reg.Disconnect(connID)

	room.Mu.Lock()
	assert.Empty(t, room.State.Players)
	room.Mu.Unlock()
	assert.Empty(t, reg.Members("GAME"))
	_, ok := reg.RoomFor(connID)
	assert.False(t, ok)

	// A repeat disconnect is harmless.
	reg.Disconnect(connID)
}

func TestEvictIdleTearsDownAbandonedRooms(t *testing.T) {
	reg := NewRegistry(
		WithCodeGenerator(func() string { return "GAME" }),
		WithIdleTTL(time.Minute),
	)
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	room.BroadcastFn = (&mockBroadcaster{}).fn

	// Fresh rooms survive the sweep inside the TTL window.
	reg.EvictIdle(time.Now().Add(30 * time.Second))
	assert.Equal(t, 1, reg.RoomCount())

	reg.EvictIdle(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, reg.RoomCount())
	_, ok := reg.Get("GAME")
	assert.False(t, ok)
}

func TestEvictIdleSparesOccupiedRooms(t *testing.T) {
	reg := NewRegistry(
		WithCodeGenerator(func() string { return "GAME" }),
		WithIdleTTL(time.Minute),
	)
	room, err := reg.CreateRoom()
	require.NoError(t, err)
	room.BroadcastFn = (&mockBroadcaster{}).fn

	connID := uuid.New()
	_, err = reg.Join("GAME", connID, "A", false)
	require.NoError(t, err)

	reg.EvictIdle(time.Now().Add(time.Hour))
	assert.Equal(t, 1, reg.RoomCount())

	// Once the last subscriber leaves, the eviction clock restarts.
	reg.Disconnect(connID)
	reg.EvictIdle(time.Now().Add(30 * time.Second))
	assert.Equal(t, 1, reg.RoomCount())
	reg.EvictIdle(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 0, reg.RoomCount())
}
