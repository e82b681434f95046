// Package models holds the shared player types exchanged between the
// session manager and the transport layer.
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Player is one participant in a room: a human behind a websocket
// connection, or a server-driven bot (Conn nil, IsBot true).
type Player struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	IsBot     bool            `json:"isBot"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`

	// Seat is the player's index in the engine seat array, assigned when
	// the game starts. -1 before that.
	Seat int `json:"-"`
}

// NewHuman builds a connected human player with a fresh id.
func NewHuman(name string, conn *websocket.Conn) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Connected: true,
		Conn:      conn,
		Seat:      -1,
	}
}

// NewBot builds a bot player. Bot names are synthetic ("Bot1", "Bot2", …)
// so the session manager and the bot driver can recognize them.
func NewBot(name string) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		IsBot:     true,
		Connected: true,
		Seat:      -1,
	}
}
