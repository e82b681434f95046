package game

import (
	"time"

	"github.com/Thanoche/OneServ/internal/engine"
)

// scheduleBotLocked arms the bot timer when the current seat is
// bot-controlled and no run is already pending. The delay keeps a
// human-observable pace; rooms with only bots still advance one step
// per tick.
func (r *Room) scheduleBotLocked() {
	if r.closed || r.game == nil || r.game.Ended || !r.game.BotTurn() {
		return
	}
	if r.botTimer != nil {
		return
	}
	r.botTimer = time.AfterFunc(r.BotDelay, r.runBotTurn)
}

// runBotTurn executes one bot move under the room lock, then re-arms
// itself through afterMoveLocked while bots remain on turn.
func (r *Room) runBotTurn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botTimer = nil
	if r.closed || r.game == nil || r.game.Ended || !r.game.BotTurn() {
		return
	}
	seat := r.game.Current
	playable := r.game.PlayableCards()
	analysis := r.game.AnalyzeCards(playable)
	fallback := r.game.EffectiveColor()
	if engine.IsSentinelColor(fallback) {
		fallback = engine.ColorRed
	}
	drew, err := r.game.DecideAndPlay(playable, analysis, fallback)
	if err != nil {
		r.log.WithError(err).Error("bot turn failed")
		return
	}
	if drew {
		r.game.AdvanceTurn()
		r.logAction("draw", r.players[seat].Name, nil)
	} else {
		r.logAction("play", r.players[seat].Name, []engine.Card{r.game.DiscardTop()})
	}
	r.afterMoveLocked(seat)
}
