package engine

import "fmt"

const (
	// DeckSize is the fixed number of cards in play for the whole game.
	DeckSize = 108
	// HandSize is the number of cards dealt to each seat.
	HandSize = 7
	// MinSeats and MaxSeats bound the seat array.
	MinSeats = 2
	MaxSeats = 10
	// ChallengePenalty is the fixed draw applied by ChallengeOut.
	ChallengePenalty = 2
)

// Controller says who decides a seat's moves.
type Controller uint8

const (
	ControllerHuman Controller = iota
	ControllerBot
)

// Seat is one position in the turn order.
type Seat struct {
	Name       string
	Controller Controller
	Hand       []Card
}

// Game holds the complete state of one table. Turn order is an indexed
// seat array plus a direction sign: the next seat is
// (Current + Direction) mod len(Seats), so no pointer ring is needed.
type Game struct {
	Seats       []*Seat
	DrawPile    []Card
	DiscardPile []Card
	Current     int
	Direction   int // +1 clockwise, -1 counterclockwise
	// ActiveColor is the color override set by wild plays. It is only
	// consulted while the discard top carries a sentinel color.
	ActiveColor    uint8
	PendingPenalty int
	Started        bool
	Ended          bool

	rng uint64
}

// NewGame initializes an empty table with the given RNG seed.
// Seats are added with AddSeat, then Deal starts play.
func NewGame(seed uint64) *Game {
	g := &Game{
		Direction:   1,
		ActiveColor: ColorNone,
		rng:         seed,
	}
	if g.rng == 0 {
		g.rng = 1 // xorshift can't start at 0
	}
	g.DrawPile = buildDeck()
	return g
}

// buildDeck returns the full 108-card deck in canonical order:
// per color one 0, two of each 1–9, two Skip, two Reverse, two DrawTwo,
// plus four Wild and four WildDrawFour.
func buildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for color := ColorRed; color <= ColorBlue; color++ {
		deck = append(deck, NewCard(color, RankZero))
		for rank := RankOne; rank <= RankDrawTwo; rank++ {
			deck = append(deck, NewCard(color, rank), NewCard(color, rank))
		}
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, NewCard(ColorAny, RankWild))
		deck = append(deck, NewCard(ColorNone, RankWildDrawFour))
	}
	return deck
}

// xorshift64 RNG — inline, no interface.
func (g *Game) nextRand() uint64 {
	x := g.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.rng = x
	return x
}

// randN returns a random number in [0, n).
func (g *Game) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// AddSeat appends a seat to the turn order. Seats are fixed once Deal runs.
func (g *Game) AddSeat(name string, ctrl Controller) error {
	if g.Started {
		return fmt.Errorf("%w: cannot add seat", ErrAlreadyStarted)
	}
	if len(g.Seats) >= MaxSeats {
		return fmt.Errorf("table is full (%d seats)", MaxSeats)
	}
	g.Seats = append(g.Seats, &Seat{Name: name, Controller: ctrl})
	return nil
}

// Deal shuffles the deck, deals HandSize cards to each seat in order and
// reveals the first discard. A revealed Skip, Reverse or DrawTwo applies
// its effect exactly as if played; a revealed Wild only sets a random
// active color; a revealed WildDrawFour is buried back into the draw pile
// and the next card is flipped instead.
func (g *Game) Deal() error {
	if g.Started {
		return ErrAlreadyStarted
	}
	if len(g.Seats) < MinSeats {
		return fmt.Errorf("need at least %d seats, have %d", MinSeats, len(g.Seats))
	}

	g.shuffle(g.DrawPile)

	// Deal one card at a time around the table.
	for c := 0; c < HandSize; c++ {
		for _, s := range g.Seats {
			s.Hand = append(s.Hand, g.popDraw())
		}
	}

	g.Started = true
	g.revealFirstDiscard()
	return nil
}

// shuffle performs a Fisher-Yates shuffle in place.
func (g *Game) shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// popDraw removes and returns the top card of the draw pile.
// The caller must ensure the pile is non-empty.
func (g *Game) popDraw() Card {
	c := g.DrawPile[len(g.DrawPile)-1]
	g.DrawPile = g.DrawPile[:len(g.DrawPile)-1]
	return c
}

// revealFirstDiscard flips the opening card and applies its reveal rules.
func (g *Game) revealFirstDiscard() {
	for {
		c := g.popDraw()
		if c.Rank() == RankWildDrawFour {
			// Bury it at a random position and flip again.
			pos := int(g.randN(uint64(len(g.DrawPile) + 1)))
			g.DrawPile = append(g.DrawPile, EmptyCard)
			copy(g.DrawPile[pos+1:], g.DrawPile[pos:])
			g.DrawPile[pos] = c
			continue
		}
		g.DiscardPile = append(g.DiscardPile, c)
		switch c.Rank() {
		case RankSkip:
			g.Current = g.step(g.Current, 1)
		case RankReverse:
			g.Direction = -g.Direction
			if len(g.Seats) == 2 {
				g.Current = g.step(g.Current, 1)
			}
		case RankDrawTwo:
			g.PendingPenalty += 2
		case RankWild:
			g.ActiveColor = uint8(g.randN(4))
		}
		return
	}
}

// step returns the seat index n steps away from `from` in the current
// direction, wrapping around the seat array.
func (g *Game) step(from, n int) int {
	count := len(g.Seats)
	idx := (from + g.Direction*n) % count
	if idx < 0 {
		idx += count
	}
	return idx
}

// CurrentSeat returns the seat whose turn it is.
func (g *Game) CurrentSeat() *Seat { return g.Seats[g.Current] }

// BotTurn reports whether the game is live and a bot must act.
func (g *Game) BotTurn() bool {
	return g.Started && !g.Ended && g.CurrentSeat().Controller == ControllerBot
}

// DiscardTop returns the last discarded card, or EmptyCard before the deal.
func (g *Game) DiscardTop() Card {
	if len(g.DiscardPile) == 0 {
		return EmptyCard
	}
	return g.DiscardPile[len(g.DiscardPile)-1]
}

// EffectiveColor returns the color new plays must match: the discard
// top's own color, or the ActiveColor override while the top is a wild.
func (g *Game) EffectiveColor() uint8 {
	top := g.DiscardTop()
	if top == EmptyCard {
		return ColorNone
	}
	if IsSentinelColor(top.Color()) {
		return g.ActiveColor
	}
	return top.Color()
}

// CardCount returns the total number of cards across piles and hands.
// It is constant for the lifetime of a dealt game.
func (g *Game) CardCount() int {
	n := len(g.DrawPile) + len(g.DiscardPile)
	for _, s := range g.Seats {
		n += len(s.Hand)
	}
	return n
}

// WinnerIndex returns the index of the seat with an empty hand, or -1.
func (g *Game) WinnerIndex() int {
	for i, s := range g.Seats {
		if g.Started && len(s.Hand) == 0 {
			return i
		}
	}
	return -1
}

// SeatIndex returns the index of the seat with the given name, or -1.
func (g *Game) SeatIndex(name string) int {
	for i, s := range g.Seats {
		if s.Name == name {
			return i
		}
	}
	return -1
}
