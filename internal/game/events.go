package game

import (
	"github.com/google/uuid"
)

// EventType represents the type of a room event broadcast to clients.
type EventType string

// Constants defining the outbound event types of the message contract.
const (
	EventRoomCreated        EventType = "roomCreated"
	EventRoomJoined         EventType = "roomJoined"
	EventPlayerJoined       EventType = "playerJoined"
	EventPlayerDisconnected EventType = "playerDisconnected"
	EventGameStarted        EventType = "gameStarted"
	EventGameStateSnapshot  EventType = "gameStateSnapshot"
	EventHandUpdated        EventType = "handUpdated"
	EventChallengeOpen      EventType = "lastCardChallengeOpen"
	EventChallengeClosed    EventType = "lastCardChallengeClosed"
	EventGameResults        EventType = "gameResults"
	EventChatMessage        EventType = "chatMessage"
	EventCommandRejected    EventType = "commandRejected"
	EventAuthenticated      EventType = "authenticated"
)

// Rejection reason codes. Precondition and stale-action rejections go
// only to the issuing player and never mutate state.
const (
	ReasonRoomNotFound     = "room_not_found"
	ReasonRoomFull         = "room_full"
	ReasonAlreadyStarted   = "game_already_started"
	ReasonAlreadyInRoom    = "already_in_room"
	ReasonNotOwner         = "not_owner"
	ReasonNotEnoughPlayers = "not_enough_players"
	ReasonGameNotStarted   = "game_not_started"
	ReasonGameEnded        = "game_ended"
	ReasonNotYourTurn      = "not_your_turn"
	ReasonCardNotInHand    = "card_not_in_hand"
	ReasonIllegalCard      = "illegal_card"
	ReasonMissingColor     = "missing_color_choice"
	ReasonStaleChallenge   = "stale_challenge"
	ReasonBadRequest       = "bad_request"
)

// Event is the standard structure for everything the core pushes to
// clients. Exactly one of the optional payload fields is set per type.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"roomId,omitempty"`
	Reason string    `json:"reason,omitempty"`

	Roster    *RosterView    `json:"roster,omitempty"`
	State     *StateView     `json:"state,omitempty"`
	Hand      *HandUpdate    `json:"hand,omitempty"`
	Challenge *ChallengeView `json:"challenge,omitempty"`
	Results   *Results       `json:"results,omitempty"`
	Chat      *ChatMessage   `json:"chat,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// CardView is a card as shown to clients.
type CardView struct {
	Color string `json:"color"`
	Rank  string `json:"rank"`
}

// SeatView is one player's public state inside a snapshot. Hand entries
// are nil placeholders for every viewer except the hand's owner, so the
// card count is public while the card identities are not.
type SeatView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	IsBot     bool        `json:"isBot"`
	Connected bool        `json:"connected"`
	Hand      []*CardView `json:"hand"`
}

// StateView is the full per-viewer game state snapshot.
type StateView struct {
	Players       []SeatView `json:"players"`
	LastCard      *CardView  `json:"lastCard,omitempty"`
	CurrentColor  string     `json:"currentColor,omitempty"`
	CurrentTurn   string     `json:"currentTurn,omitempty"`
	PendingDraw   int        `json:"pendingDraw,omitempty"`
	PlayableCards []CardView `json:"playableCards,omitempty"`
}

// HandUpdate describes one player's hand change after a play or draw,
// masked per viewer like SeatView.Hand.
type HandUpdate struct {
	Player        string      `json:"player"`
	NewHand       []*CardView `json:"newHand"`
	LastCard      *CardView   `json:"lastCard,omitempty"`
	CurrentColor  string      `json:"currentColor,omitempty"`
	CurrentTurn   string      `json:"currentTurn"`
	PendingDraw   int         `json:"pendingDraw,omitempty"`
	PlayableCards []CardView  `json:"playableCards,omitempty"`
}

// ChallengeView names the player under a last-card accusation window.
type ChallengeView struct {
	Accused  string `json:"accused"`
	WindowMs int64  `json:"windowMs,omitempty"`
}

// Ranking is one row of the end-of-game standings.
type Ranking struct {
	Name      string `json:"name"`
	CardCount int    `json:"cardCount"`
}

// Results is the end-of-game settlement payload.
type Results struct {
	Winner   string    `json:"winner"`
	Rankings []Ranking `json:"rankings"`
}

// RosterView is the seat list broadcast on join/leave.
type RosterView struct {
	Owner   string         `json:"owner"`
	Players []RosterPlayer `json:"players"`
}

// RosterPlayer is one roster entry.
type RosterPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

// ChatMessage relays an in-room chat line.
type ChatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// rejectEvent builds a commandRejected event for a single player.
func rejectEvent(roomID uuid.UUID, reason string) Event {
	return Event{Type: EventCommandRejected, RoomID: roomID.String(), Reason: reason}
}
