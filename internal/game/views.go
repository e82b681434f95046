package game

import (
	"sort"

	"github.com/Thanoche/OneServ/internal/engine"
)

func cardView(c engine.Card) CardView {
	return CardView{Color: engine.ColorName(c.Color()), Rank: engine.RankName(c.Rank())}
}

func cardViews(cards []engine.Card) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

// maskedHand projects a hand for a viewer. The owner sees the real
// cards; everyone else sees an equal-length run of nil placeholders so
// only the count leaks.
func maskedHand(hand []engine.Card, owned bool) []*CardView {
	out := make([]*CardView, len(hand))
	if !owned {
		return out
	}
	for i, c := range hand {
		cv := cardView(c)
		out[i] = &cv
	}
	return out
}

// stateViewLocked builds the full snapshot as seen by viewerSeat.
// A negative viewerSeat produces a fully masked spectator view.
func (r *Room) stateViewLocked(viewerSeat int) *StateView {
	sv := &StateView{
		Players:     make([]SeatView, 0, len(r.players)),
		CurrentTurn: r.game.CurrentSeat().Name,
		PendingDraw: r.game.PendingPenalty,
	}
	for i, p := range r.players {
		sv.Players = append(sv.Players, SeatView{
			ID:        p.ID.String(),
			Name:      p.Name,
			IsBot:     p.IsBot,
			Connected: p.Connected,
			Hand:      maskedHand(r.game.Seats[i].Hand, i == viewerSeat),
		})
	}
	if top := r.game.DiscardTop(); top != engine.EmptyCard {
		tv := cardView(top)
		sv.LastCard = &tv
		sv.CurrentColor = engine.ColorName(r.game.EffectiveColor())
	}
	if viewerSeat == r.game.Current {
		sv.PlayableCards = cardViews(r.game.PlayableCards())
	}
	return sv
}

// handUpdateLocked builds the post-mutation update for actingSeat's
// hand as seen by viewerSeat.
func (r *Room) handUpdateLocked(actingSeat, viewerSeat int) *HandUpdate {
	hu := &HandUpdate{
		Player:      r.players[actingSeat].Name,
		NewHand:     maskedHand(r.game.Seats[actingSeat].Hand, actingSeat == viewerSeat),
		CurrentTurn: r.game.CurrentSeat().Name,
		PendingDraw: r.game.PendingPenalty,
	}
	if top := r.game.DiscardTop(); top != engine.EmptyCard {
		tv := cardView(top)
		hu.LastCard = &tv
		hu.CurrentColor = engine.ColorName(r.game.EffectiveColor())
	}
	if viewerSeat == r.game.Current && !r.game.Ended {
		hu.PlayableCards = cardViews(r.game.PlayableCards())
	}
	return hu
}

func (r *Room) rosterLocked() *RosterView {
	rv := &RosterView{Players: make([]RosterPlayer, 0, len(r.players))}
	for _, p := range r.players {
		if p.ID == r.owner {
			rv.Owner = p.Name
		}
		rv.Players = append(rv.Players, RosterPlayer{ID: p.ID.String(), Name: p.Name, IsBot: p.IsBot})
	}
	return rv
}

// resultsLocked ranks all seats by ascending remaining hand size, ties
// keeping roster order, and names the empty-handed seat the winner.
func (r *Room) resultsLocked() *Results {
	type row struct {
		name  string
		count int
	}
	rows := make([]row, 0, len(r.players))
	for i, p := range r.players {
		rows = append(rows, row{name: p.Name, count: len(r.game.Seats[i].Hand)})
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].count < rows[b].count })
	res := &Results{Winner: "no winner", Rankings: make([]Ranking, 0, len(rows))}
	for _, rw := range rows {
		res.Rankings = append(res.Rankings, Ranking{Name: rw.name, CardCount: rw.count})
	}
	if len(rows) > 0 && rows[0].count == 0 {
		res.Winner = rows[0].name
	}
	return res
}
