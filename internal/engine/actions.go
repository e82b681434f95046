package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors, wrapped with detail by the action methods. The session
// layer maps them to rejection reason codes with errors.Is. None of these
// leave the game state mutated.
var (
	ErrNotStarted     = errors.New("game not started")
	ErrAlreadyStarted = errors.New("game already started")
	ErrGameEnded      = errors.New("game already ended")
	ErrEmptyPlay      = errors.New("no cards selected")
	ErrMixedRanks     = errors.New("multi-card plays must share a rank")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrIllegalCard    = errors.New("card does not match the current color or rank")
	ErrMissingColor   = errors.New("wild play requires a color choice")
	ErrBadSeat        = errors.New("no such seat")
)

// Play resolves the current seat playing one or more cards.
//
// The first card must match the effective color, match the discard top's
// rank, or be a wild; additional cards may only ride along when they share
// the first card's rank (same-rank dump). While a penalty is pending only
// countering draw cards are legal. chosenColor must be a concrete color
// when the last card played is a wild and is ignored otherwise.
//
// Effects apply per card: each Skip advances one extra seat, each Reverse
// flips direction (acting as an extra skip with two seats), each DrawTwo
// or WildDrawFour adds to the pending penalty. If the hand empties, Ended
// is set in the same transition and the turn does not advance.
func (g *Game) Play(cards []Card, chosenColor uint8) error {
	if !g.Started {
		return ErrNotStarted
	}
	if g.Ended {
		return ErrGameEnded
	}
	if len(cards) == 0 {
		return ErrEmptyPlay
	}
	for _, c := range cards[1:] {
		if c.Rank() != cards[0].Rank() {
			return fmt.Errorf("%w: %v", ErrMixedRanks, cards)
		}
	}
	if !g.canLead(cards[0]) {
		return fmt.Errorf("%w: %v", ErrIllegalCard, cards[0])
	}
	last := cards[len(cards)-1]
	if last.IsWild() && chosenColor > ColorBlue {
		return ErrMissingColor
	}

	seat := g.CurrentSeat()
	if !handContains(seat.Hand, cards) {
		return fmt.Errorf("%w: %v", ErrCardNotInHand, cards)
	}

	// All checks passed — mutate.
	seat.Hand = removeCards(seat.Hand, cards)
	g.DiscardPile = append(g.DiscardPile, cards...)
	if last.IsWild() {
		g.ActiveColor = chosenColor
	}

	skips := 0
	for _, c := range cards {
		switch c.Rank() {
		case RankSkip:
			skips++
		case RankReverse:
			g.Direction = -g.Direction
			if len(g.Seats) == 2 {
				skips++
			}
		case RankDrawTwo:
			g.PendingPenalty += 2
		case RankWildDrawFour:
			g.PendingPenalty += 4
		}
	}

	if len(seat.Hand) == 0 {
		g.Ended = true
		return nil
	}
	g.Current = g.step(g.Current, 1+skips)
	return nil
}

// canLead reports whether c is legal as the first card of a play.
func (g *Game) canLead(c Card) bool {
	if g.PendingPenalty > 0 {
		return g.countersPenalty(c)
	}
	if c.IsWild() {
		return true
	}
	top := g.DiscardTop()
	return c.Color() == g.EffectiveColor() || c.Rank() == top.Rank()
}

// countersPenalty reports whether c extends a pending draw-card chain.
// A DrawTwo chain accepts any DrawTwo or a WildDrawFour; a WildDrawFour
// chain accepts only another WildDrawFour.
func (g *Game) countersPenalty(c Card) bool {
	if c.Rank() == RankWildDrawFour {
		return true
	}
	return c.Rank() == RankDrawTwo && g.DiscardTop().Rank() == RankDrawTwo
}

// Draw gives the current seat its cards: the whole pending penalty when
// one is outstanding (resetting the counter), otherwise a single card.
// Drawing never advances the turn — that is the session manager's call,
// made through AdvanceTurn.
func (g *Game) Draw() ([]Card, error) {
	if !g.Started {
		return nil, ErrNotStarted
	}
	if g.Ended {
		return nil, ErrGameEnded
	}
	n := 1
	if g.PendingPenalty > 0 {
		n = g.PendingPenalty
		g.PendingPenalty = 0
	}
	cards := g.drawFromPile(n)
	seat := g.CurrentSeat()
	seat.Hand = append(seat.Hand, cards...)
	return cards, nil
}

// AdvanceTurn moves play to the next seat. No-op once the game has ended.
func (g *Game) AdvanceTurn() {
	if !g.Started || g.Ended {
		return
	}
	g.Current = g.step(g.Current, 1)
}

// ChallengeOut applies the fixed last-card accusation penalty to the
// given seat, independent of any pending penalty.
func (g *Game) ChallengeOut(seatIdx int) ([]Card, error) {
	if !g.Started {
		return nil, ErrNotStarted
	}
	if g.Ended {
		return nil, ErrGameEnded
	}
	if seatIdx < 0 || seatIdx >= len(g.Seats) {
		return nil, fmt.Errorf("%w: %d", ErrBadSeat, seatIdx)
	}
	cards := g.drawFromPile(ChallengePenalty)
	seat := g.Seats[seatIdx]
	seat.Hand = append(seat.Hand, cards...)
	return cards, nil
}

// PlayableCards returns, without mutation, the cards of the current hand
// that would be legal first cards right now.
func (g *Game) PlayableCards() []Card {
	if !g.Started || g.Ended {
		return nil
	}
	var playable []Card
	for _, c := range g.CurrentSeat().Hand {
		if g.canLead(c) {
			playable = append(playable, c)
		}
	}
	return playable
}

// drawFromPile removes up to n cards from the draw pile, reshuffling the
// discard remainder under the top card whenever the pile runs dry. It
// returns fewer than n cards only when both piles are exhausted, which a
// closed card count makes unreachable in practice.
func (g *Game) drawFromPile(n int) []Card {
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		if len(g.DrawPile) == 0 {
			g.reshuffleDiscard()
		}
		if len(g.DrawPile) == 0 {
			break
		}
		cards = append(cards, g.popDraw())
	}
	return cards
}

// reshuffleDiscard folds everything but the discard top back into the
// draw pile in random order.
func (g *Game) reshuffleDiscard() {
	if len(g.DiscardPile) <= 1 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	rest := make([]Card, len(g.DiscardPile)-1)
	copy(rest, g.DiscardPile[:len(g.DiscardPile)-1])
	g.shuffle(rest)
	g.DrawPile = append(g.DrawPile, rest...)
	g.DiscardPile = g.DiscardPile[:0]
	g.DiscardPile = append(g.DiscardPile, top)
}

// handContains reports whether hand holds every card in cards, counting
// duplicates as a multiset.
func handContains(hand, cards []Card) bool {
	var counts [256]int
	for _, c := range hand {
		counts[c]++
	}
	for _, c := range cards {
		counts[c]--
		if counts[c] < 0 {
			return false
		}
	}
	return true
}

// removeCards deletes one occurrence of each card in cards from hand.
func removeCards(hand, cards []Card) []Card {
	for _, c := range cards {
		for i, h := range hand {
			if h == c {
				hand = append(hand[:i], hand[i+1:]...)
				break
			}
		}
	}
	return hand
}
