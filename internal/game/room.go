package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Thanoche/OneServ/internal/cache"
	"github.com/Thanoche/OneServ/internal/engine"
	"github.com/Thanoche/OneServ/internal/models"
)

// Default pacing constants.
const (
	DefaultBotDelay        = 2 * time.Second
	DefaultChallengeWindow = 3 * time.Second
)

// Room owns one game and its roster. Every command handler takes the
// room mutex, so at most one mutation of the game is in flight at a
// time; different rooms proceed independently.
//
// The transport wires the broadcast callbacks; the room never touches
// connections directly.
type Room struct {
	ID         uuid.UUID
	MaxPlayers int
	UseBots    bool

	BotDelay        time.Duration
	ChallengeWindow time.Duration

	BroadcastFn         func(ev Event)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev Event)
	OnRoomEnd           func(r *Room)

	mu      sync.Mutex
	owner   uuid.UUID
	players []*models.Player
	game    *engine.Game
	closed  bool

	challengeAccused uuid.UUID
	challengeTimer   *time.Timer
	botTimer         *time.Timer

	log         *logrus.Entry
	actionIndex int
}

// NewRoom creates an empty room. The first player to Join becomes the
// owner.
func NewRoom(maxPlayers int, useBots bool, logger *logrus.Logger) *Room {
	if maxPlayers < engine.MinSeats {
		maxPlayers = engine.MinSeats
	}
	if maxPlayers > engine.MaxSeats {
		maxPlayers = engine.MaxSeats
	}
	id := uuid.New()
	return &Room{
		ID:              id,
		MaxPlayers:      maxPlayers,
		UseBots:         useBots,
		BotDelay:        DefaultBotDelay,
		ChallengeWindow: DefaultChallengeWindow,
		log:             logger.WithField("room_id", id.String()),
	}
}

func (r *Room) broadcastLocked(ev Event) {
	ev.RoomID = r.ID.String()
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *Room) toPlayerLocked(playerID uuid.UUID, ev Event) {
	ev.RoomID = r.ID.String()
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

func (r *Room) rejectLocked(playerID uuid.UUID, reason string) {
	r.toPlayerLocked(playerID, rejectEvent(r.ID, reason))
}

// seatOf returns the seat index of a player id, or -1.
func (r *Room) seatOf(playerID uuid.UUID) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Join seats a player and reports whether the seat was taken. The
// first joiner becomes the owner. Rejections go only to the candidate,
// who must not end up in the room's broadcast set.
func (r *Room) Join(p *models.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.rejectLocked(p.ID, ReasonRoomNotFound)
		return false
	}
	if r.game != nil {
		r.rejectLocked(p.ID, ReasonAlreadyStarted)
		return false
	}
	if len(r.players) >= r.MaxPlayers {
		r.rejectLocked(p.ID, ReasonRoomFull)
		return false
	}
	if r.seatOf(p.ID) >= 0 {
		r.rejectLocked(p.ID, ReasonAlreadyInRoom)
		return false
	}
	if len(r.players) == 0 {
		r.owner = p.ID
	}
	p.Seat = len(r.players)
	r.players = append(r.players, p)
	r.log.WithFields(logrus.Fields{"player": p.Name, "seat": p.Seat}).Info("player joined")
	r.toPlayerLocked(p.ID, Event{Type: EventRoomJoined, Roster: r.rosterLocked()})
	r.broadcastLocked(Event{Type: EventPlayerJoined, Roster: r.rosterLocked()})
	r.logAction("join", p.Name, nil)
	return true
}

// HandleStart deals and begins play. Owner only. When the room was
// created with bots enabled, empty seats are filled with bots up to
// MaxPlayers.
func (r *Room) HandleStart(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.rejectLocked(playerID, ReasonRoomNotFound)
		return
	}
	if r.game != nil {
		r.rejectLocked(playerID, ReasonAlreadyStarted)
		return
	}
	if playerID != r.owner {
		r.rejectLocked(playerID, ReasonNotOwner)
		return
	}
	if r.UseBots {
		for n := 1; len(r.players) < r.MaxPlayers; n++ {
			bot := models.NewBot(fmt.Sprintf("Bot%d", n))
			bot.Seat = len(r.players)
			r.players = append(r.players, bot)
		}
	}
	if len(r.players) < engine.MinSeats {
		r.rejectLocked(playerID, ReasonNotEnoughPlayers)
		return
	}

	g := engine.NewGame(uint64(time.Now().UnixNano()))
	for _, p := range r.players {
		ctrl := engine.ControllerHuman
		if p.IsBot || !p.Connected {
			ctrl = engine.ControllerBot
		}
		if err := g.AddSeat(p.Name, ctrl); err != nil {
			r.log.WithError(err).Error("seat setup failed")
			r.rejectLocked(playerID, ReasonBadRequest)
			return
		}
	}
	if err := g.Deal(); err != nil {
		r.log.WithError(err).Error("deal failed")
		r.rejectLocked(playerID, ReasonBadRequest)
		return
	}
	r.game = g
	r.log.WithField("players", len(r.players)).Info("game started")
	r.broadcastLocked(Event{Type: EventGameStarted, Roster: r.rosterLocked()})
	r.snapshotLocked()
	r.logAction("start", r.players[0].Name, nil)
	r.scheduleBotLocked()
}

// snapshotLocked sends each connected human their own masked snapshot.
func (r *Room) snapshotLocked() {
	for i, p := range r.players {
		if p.IsBot || !p.Connected {
			continue
		}
		r.toPlayerLocked(p.ID, Event{Type: EventGameStateSnapshot, State: r.stateViewLocked(i)})
	}
}

// fanOutHandLocked sends each connected human its view of actingSeat's
// hand change.
func (r *Room) fanOutHandLocked(actingSeat int) {
	for i, p := range r.players {
		if p.IsBot || !p.Connected {
			continue
		}
		r.toPlayerLocked(p.ID, Event{Type: EventHandUpdated, Hand: r.handUpdateLocked(actingSeat, i)})
	}
}

// checkActiveLocked validates the common preconditions for in-game commands.
// Returns the seat index, or -1 after sending a rejection.
func (r *Room) checkActiveLocked(playerID uuid.UUID) int {
	if r.closed {
		r.rejectLocked(playerID, ReasonRoomNotFound)
		return -1
	}
	if r.game == nil {
		r.rejectLocked(playerID, ReasonGameNotStarted)
		return -1
	}
	if r.game.Ended {
		r.rejectLocked(playerID, ReasonGameEnded)
		return -1
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		r.rejectLocked(playerID, ReasonBadRequest)
		return -1
	}
	return seat
}

// HandlePlay plays the cards at the given hand positions.
func (r *Room) HandlePlay(playerID uuid.UUID, cardIndices []int, chosenColor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat := r.checkActiveLocked(playerID)
	if seat < 0 {
		return
	}
	if seat != r.game.Current {
		r.rejectLocked(playerID, ReasonNotYourTurn)
		return
	}
	hand := r.game.Seats[seat].Hand
	cards := make([]engine.Card, 0, len(cardIndices))
	for _, idx := range cardIndices {
		if idx < 0 || idx >= len(hand) {
			r.rejectLocked(playerID, ReasonCardNotInHand)
			return
		}
		cards = append(cards, hand[idx])
	}
	color := engine.ColorNone
	if chosenColor != "" {
		color = engine.ParseColor(chosenColor)
	}
	if err := r.game.Play(cards, color); err != nil {
		r.rejectLocked(playerID, playReason(err))
		return
	}
	r.logAction("play", r.players[seat].Name, cards)
	r.afterMoveLocked(seat)
}

// HandleDraw draws the pending penalty (or a single card) and passes
// the turn.
func (r *Room) HandleDraw(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat := r.checkActiveLocked(playerID)
	if seat < 0 {
		return
	}
	if seat != r.game.Current {
		r.rejectLocked(playerID, ReasonNotYourTurn)
		return
	}
	drawn, err := r.game.Draw()
	if err != nil {
		r.rejectLocked(playerID, playReason(err))
		return
	}
	r.game.AdvanceTurn()
	r.logAction("draw", r.players[seat].Name, drawn)
	r.afterMoveLocked(seat)
}

// afterMoveLocked runs the shared post-mutation sequence: fan out
// views, settle on game end, open the last-card window, and kick the
// bot driver.
func (r *Room) afterMoveLocked(actingSeat int) {
	r.fanOutHandLocked(actingSeat)
	if r.game.Ended {
		r.settleLocked()
		return
	}
	if len(r.game.Seats[actingSeat].Hand) == 1 {
		r.openChallengeLocked(actingSeat)
	}
	r.scheduleBotLocked()
}

// HandleDeclareLastCard closes the window when the accused player
// announces their last card in time.
func (r *Room) HandleDeclareLastCard(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.game == nil {
		r.rejectLocked(playerID, ReasonStaleChallenge)
		return
	}
	if r.challengeAccused != playerID {
		r.rejectLocked(playerID, ReasonStaleChallenge)
		return
	}
	name := r.players[r.seatOf(playerID)].Name
	r.clearChallengeLocked()
	r.broadcastLocked(Event{Type: EventChallengeClosed, Challenge: &ChallengeView{Accused: name}})
	r.logAction("declareLastCard", name, nil)
}

// HandleAccuse applies the last-card penalty when an open window names
// someone other than the accuser.
func (r *Room) HandleAccuse(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.game == nil || r.game.Ended {
		r.rejectLocked(playerID, ReasonStaleChallenge)
		return
	}
	if r.seatOf(playerID) < 0 {
		r.rejectLocked(playerID, ReasonBadRequest)
		return
	}
	accused := r.challengeAccused
	if accused == uuid.Nil || accused == playerID {
		r.rejectLocked(playerID, ReasonStaleChallenge)
		return
	}
	accusedSeat := r.seatOf(accused)
	r.clearChallengeLocked()
	if _, err := r.game.ChallengeOut(accusedSeat); err != nil {
		r.log.WithError(err).Warn("challenge penalty failed")
		return
	}
	name := r.players[accusedSeat].Name
	r.log.WithField("accused", name).Info("last-card challenge upheld")
	r.broadcastLocked(Event{Type: EventChallengeClosed, Challenge: &ChallengeView{Accused: name}})
	r.fanOutHandLocked(accusedSeat)
	r.logAction("accuseLastCard", r.playerName(playerID), nil)
}

func (r *Room) playerName(playerID uuid.UUID) string {
	if i := r.seatOf(playerID); i >= 0 {
		return r.players[i].Name
	}
	return ""
}

// HandleChat relays a chat line to the whole room.
func (r *Room) HandleChat(playerID uuid.UUID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	seat := r.seatOf(playerID)
	if seat < 0 || text == "" {
		return
	}
	r.broadcastLocked(Event{Type: EventChatMessage, Chat: &ChatMessage{From: r.players[seat].Name, Text: text}})
	r.logAction("chat", r.players[seat].Name, nil)
}

// HandleDisconnect handles transport loss. Before the game starts the
// player leaves the roster; mid-game their seat is handed to the bot
// policy so play continues. The room closes once no connected human
// remains.
func (r *Room) HandleDisconnect(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	seat := r.seatOf(playerID)
	if seat < 0 {
		return
	}
	p := r.players[seat]
	p.Connected = false
	r.log.WithField("player", p.Name).Info("player disconnected")

	if r.game == nil {
		r.players = append(r.players[:seat], r.players[seat+1:]...)
		for i, q := range r.players {
			q.Seat = i
		}
		if p.ID == r.owner && len(r.players) > 0 {
			r.owner = r.players[0].ID
		}
		if len(r.players) == 0 {
			r.closeLocked()
			return
		}
		r.broadcastLocked(Event{Type: EventPlayerDisconnected, Roster: r.rosterLocked()})
		return
	}

	r.game.Seats[seat].Controller = engine.ControllerBot
	r.broadcastLocked(Event{Type: EventPlayerDisconnected, Roster: r.rosterLocked()})
	if !r.anyHumanLocked() {
		r.closeLocked()
		return
	}
	if r.challengeAccused == playerID {
		r.clearChallengeLocked()
		r.broadcastLocked(Event{Type: EventChallengeClosed, Challenge: &ChallengeView{Accused: p.Name}})
	}
	r.scheduleBotLocked()
}

func (r *Room) anyHumanLocked() bool {
	for _, p := range r.players {
		if !p.IsBot && p.Connected {
			return true
		}
	}
	return false
}

// openChallengeLocked arms the last-card window for the seat that just
// dropped to one card. Bots announce immediately, so their window opens
// and closes in the same step.
func (r *Room) openChallengeLocked(seat int) {
	p := r.players[seat]
	r.clearChallengeLocked()
	r.broadcastLocked(Event{
		Type:      EventChallengeOpen,
		Challenge: &ChallengeView{Accused: p.Name, WindowMs: r.ChallengeWindow.Milliseconds()},
	})
	if p.IsBot || !p.Connected {
		r.broadcastLocked(Event{Type: EventChallengeClosed, Challenge: &ChallengeView{Accused: p.Name}})
		return
	}
	r.challengeAccused = p.ID
	accused := p.ID
	r.challengeTimer = time.AfterFunc(r.ChallengeWindow, func() {
		r.expireChallenge(accused)
	})
}

// expireChallenge clears the window after the timer fires, unless an
// accusation or declaration already resolved it.
func (r *Room) expireChallenge(accused uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.challengeAccused != accused {
		return
	}
	name := r.playerName(accused)
	r.clearChallengeLocked()
	r.broadcastLocked(Event{Type: EventChallengeClosed, Challenge: &ChallengeView{Accused: name}})
}

func (r *Room) clearChallengeLocked() {
	if r.challengeTimer != nil {
		r.challengeTimer.Stop()
		r.challengeTimer = nil
	}
	r.challengeAccused = uuid.Nil
}

// settleLocked broadcasts the final standings and tears the room down.
func (r *Room) settleLocked() {
	res := r.resultsLocked()
	r.log.WithField("winner", res.Winner).Info("game over")
	r.broadcastLocked(Event{Type: EventGameResults, Results: res})
	r.logAction("results", res.Winner, nil)
	r.closeLocked()
}

// closeLocked stops all pending timers and detaches the room.
func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true
	r.clearChallengeLocked()
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
	r.log.Info("room closed")
	if r.OnRoomEnd != nil {
		go r.OnRoomEnd(r)
	}
}

// Closed reports whether the room has been torn down.
func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// logAction publishes an action record to the cache without holding up
// the caller. Best effort only.
func (r *Room) logAction(action, actor string, cards []engine.Card) {
	idx := r.actionIndex
	r.actionIndex++
	rec := cache.RoomActionRecord{
		Index:     idx,
		Action:    action,
		Actor:     actor,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, c := range cards {
		rec.Cards = append(rec.Cards, c.String())
	}
	roomID := r.ID.String()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomAction(ctx, roomID, rec); err != nil {
			r.log.WithError(err).Debug("action log publish failed")
		}
	}()
}

// playReason maps an engine error to a rejection reason code. The
// engine wraps some of its sentinel errors with card context, so
// matching goes through errors.Is.
func playReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotStarted):
		return ReasonGameNotStarted
	case errors.Is(err, engine.ErrGameEnded):
		return ReasonGameEnded
	case errors.Is(err, engine.ErrCardNotInHand):
		return ReasonCardNotInHand
	case errors.Is(err, engine.ErrMissingColor):
		return ReasonMissingColor
	case errors.Is(err, engine.ErrEmptyPlay),
		errors.Is(err, engine.ErrMixedRanks),
		errors.Is(err, engine.ErrIllegalCard):
		return ReasonIllegalCard
	default:
		return ReasonBadRequest
	}
}
