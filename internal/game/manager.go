package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager owns the live room set. Lookup is read-locked so rooms
// operate independently; only create and remove take the write lock.
type Manager struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room

	BotDelay        time.Duration
	ChallengeWindow time.Duration

	log *logrus.Logger
}

// NewManager constructs an empty manager with default pacing.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		rooms:           make(map[uuid.UUID]*Room),
		BotDelay:        DefaultBotDelay,
		ChallengeWindow: DefaultChallengeWindow,
		log:             logger,
	}
}

// CreateRoom registers a new room and hooks its teardown back into the
// manager.
func (m *Manager) CreateRoom(maxPlayers int, useBots bool) *Room {
	r := NewRoom(maxPlayers, useBots, m.log)
	r.BotDelay = m.BotDelay
	r.ChallengeWindow = m.ChallengeWindow
	r.OnRoomEnd = func(room *Room) {
		m.RemoveRoom(room.ID)
	}
	m.mu.Lock()
	m.rooms[r.ID] = r
	m.mu.Unlock()
	m.log.WithField("room_id", r.ID.String()).Info("room created")
	return r
}

// GetRoom looks up a live room.
func (m *Manager) GetRoom(id uuid.UUID) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RemoveRoom drops a room from the registry. The room's own timers are
// stopped by its close path.
func (m *Manager) RemoveRoom(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
