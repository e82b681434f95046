package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateLookupRemove(t *testing.T) {
	m := NewManager(testLogger())

	r := m.CreateRoom(4, false)
	require.NotNil(t, r)
	assert.Equal(t, 1, m.RoomCount())

	got, ok := m.GetRoom(r.ID)
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = m.GetRoom(uuid.New())
	assert.False(t, ok)

	m.RemoveRoom(r.ID)
	assert.Equal(t, 0, m.RoomCount())
}

func TestManagerAppliesPacing(t *testing.T) {
	m := NewManager(testLogger())
	m.BotDelay = 50 * time.Millisecond
	m.ChallengeWindow = 75 * time.Millisecond

	r := m.CreateRoom(2, true)
	assert.Equal(t, 50*time.Millisecond, r.BotDelay)
	assert.Equal(t, 75*time.Millisecond, r.ChallengeWindow)
}

func TestManagerClampsCapacity(t *testing.T) {
	m := NewManager(testLogger())

	small := m.CreateRoom(0, false)
	assert.Equal(t, 2, small.MaxPlayers)

	big := m.CreateRoom(99, false)
	assert.Equal(t, 10, big.MaxPlayers)
}

func TestRoomTeardownDeregisters(t *testing.T) {
	m := NewManager(testLogger())
	r := m.CreateRoom(2, false)
	mb := newMockBroadcaster()
	r.BroadcastFn = mb.broadcastFn
	r.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	r.mu.Lock()
	r.closeLocked()
	r.mu.Unlock()

	require.Eventually(t, func() bool {
		return m.RoomCount() == 0
	}, time.Second, 5*time.Millisecond)
}
