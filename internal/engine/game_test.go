package engine

import (
	"fmt"
	"testing"
)

// newTestGame builds a started game with the given hands, the given
// discard top and a small stocked draw pile. Seat 0 acts first.
func newTestGame(hands [][]Card, top Card) *Game {
	g := NewGame(7)
	g.DrawPile = nil
	for i, h := range hands {
		g.Seats = append(g.Seats, &Seat{
			Name: fmt.Sprintf("p%d", i),
			Hand: append([]Card{}, h...),
		})
	}
	for i := 0; i < 24; i++ {
		g.DrawPile = append(g.DrawPile, NewCard(uint8(i%4), RankOne))
	}
	g.DiscardPile = []Card{top}
	g.Started = true
	return g
}

func TestDeal(t *testing.T) {
	g := NewGame(12345)
	for i := 0; i < 3; i++ {
		if err := g.AddSeat(fmt.Sprintf("p%d", i), ControllerHuman); err != nil {
			t.Fatalf("AddSeat: %v", err)
		}
	}
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if !g.Started {
		t.Error("Started should be true after Deal")
	}
	for i, s := range g.Seats {
		if len(s.Hand) != HandSize {
			t.Errorf("seat %d hand size = %d, want %d", i, len(s.Hand), HandSize)
		}
	}
	if top := g.DiscardTop(); top == EmptyCard {
		t.Error("Deal should reveal a first discard")
	} else if top.Rank() == RankWildDrawFour {
		t.Error("revealed first discard must never be a wild-draw-four")
	}
	if got := g.CardCount(); got != DeckSize {
		t.Errorf("card count after deal = %d, want %d", got, DeckSize)
	}
}

func TestDealPreconditions(t *testing.T) {
	g := NewGame(1)
	_ = g.AddSeat("alone", ControllerHuman)
	if err := g.Deal(); err == nil {
		t.Error("Deal with one seat should fail")
	}
	_ = g.AddSeat("second", ControllerHuman)
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	if err := g.Deal(); err == nil {
		t.Error("second Deal should fail")
	}
	if err := g.AddSeat("late", ControllerHuman); err == nil {
		t.Error("AddSeat after Deal should fail")
	}
}

// TestRevealEffects verifies the opening-card rules: Skip/Reverse/DrawTwo
// apply as if played, Wild sets a random concrete color, WildDrawFour is
// buried and the next card is flipped.
func TestRevealEffects(t *testing.T) {
	filler := NewCard(ColorRed, RankThree)

	setup := func(seats int, pile []Card) *Game {
		g := NewGame(9)
		g.DrawPile = pile
		for i := 0; i < seats; i++ {
			g.Seats = append(g.Seats, &Seat{Name: fmt.Sprintf("p%d", i)})
		}
		return g
	}

	t.Run("skip", func(t *testing.T) {
		g := setup(3, []Card{filler, NewCard(ColorBlue, RankSkip)})
		g.revealFirstDiscard()
		if g.Current != 1 {
			t.Errorf("Current = %d, want 1", g.Current)
		}
	})

	t.Run("reverse three seats", func(t *testing.T) {
		g := setup(3, []Card{filler, NewCard(ColorBlue, RankReverse)})
		g.revealFirstDiscard()
		if g.Direction != -1 {
			t.Errorf("Direction = %d, want -1", g.Direction)
		}
		if g.Current != 0 {
			t.Errorf("Current = %d, want 0", g.Current)
		}
	})

	t.Run("reverse two seats acts as skip", func(t *testing.T) {
		g := setup(2, []Card{filler, NewCard(ColorBlue, RankReverse)})
		g.revealFirstDiscard()
		if g.Direction != -1 {
			t.Errorf("Direction = %d, want -1", g.Direction)
		}
		if g.Current != 1 {
			t.Errorf("Current = %d, want 1", g.Current)
		}
	})

	t.Run("draw two", func(t *testing.T) {
		g := setup(3, []Card{filler, NewCard(ColorGreen, RankDrawTwo)})
		g.revealFirstDiscard()
		if g.PendingPenalty != 2 {
			t.Errorf("PendingPenalty = %d, want 2", g.PendingPenalty)
		}
	})

	t.Run("wild sets a concrete color", func(t *testing.T) {
		g := setup(3, []Card{filler, NewCard(ColorAny, RankWild)})
		g.revealFirstDiscard()
		if IsSentinelColor(g.ActiveColor) {
			t.Errorf("ActiveColor = %s, want concrete", ColorName(g.ActiveColor))
		}
		if g.EffectiveColor() != g.ActiveColor {
			t.Error("effective color should follow the override for a wild top")
		}
	})

	t.Run("wild draw four is buried", func(t *testing.T) {
		g := setup(3, []Card{filler, NewCard(ColorNone, RankWildDrawFour)})
		g.revealFirstDiscard()
		if top := g.DiscardTop(); top.Rank() == RankWildDrawFour {
			t.Errorf("top = %v, wild-draw-four must not open play", top)
		}
		if got := len(g.DrawPile) + len(g.DiscardPile); got != 2 {
			t.Errorf("card count = %d, want 2", got)
		}
	})
}

func TestStepWraps(t *testing.T) {
	g := newTestGame([][]Card{{}, {}, {}, {}}, NewCard(ColorRed, RankOne))
	tests := []struct {
		from, dir, n, want int
	}{
		{0, 1, 1, 1},
		{3, 1, 1, 0},
		{3, 1, 2, 1},
		{0, -1, 1, 3},
		{1, -1, 2, 3},
		{2, -1, 6, 0},
	}
	for _, tt := range tests {
		g.Direction = tt.dir
		if got := g.step(tt.from, tt.n); got != tt.want {
			t.Errorf("step(%d, %d) dir %d = %d, want %d", tt.from, tt.n, tt.dir, got, tt.want)
		}
	}
}

func TestEffectiveColor(t *testing.T) {
	g := newTestGame([][]Card{{}, {}}, NewCard(ColorYellow, RankFive))
	if got := g.EffectiveColor(); got != ColorYellow {
		t.Errorf("effective color = %s, want yellow", ColorName(got))
	}
	g.DiscardPile = append(g.DiscardPile, NewCard(ColorAny, RankWild))
	g.ActiveColor = ColorGreen
	if got := g.EffectiveColor(); got != ColorGreen {
		t.Errorf("effective color = %s, want green override", ColorName(got))
	}
}

// TestBotPlayoutConservation runs a full bots-only game from a deal and
// checks the closed card count after every single action, alongside
// termination and win detection.
func TestBotPlayoutConservation(t *testing.T) {
	for _, seats := range []int{2, 4} {
		t.Run(fmt.Sprintf("%d seats", seats), func(t *testing.T) {
			g := NewGame(uint64(99 + seats))
			for i := 0; i < seats; i++ {
				if err := g.AddSeat(fmt.Sprintf("bot%d", i), ControllerBot); err != nil {
					t.Fatalf("AddSeat: %v", err)
				}
			}
			if err := g.Deal(); err != nil {
				t.Fatalf("Deal: %v", err)
			}

			for turns := 0; turns < 20000 && !g.Ended; turns++ {
				playable := g.PlayableCards()
				analysis := g.AnalyzeCards(playable)
				acting := g.Current
				drew, err := g.DecideAndPlay(playable, analysis, ColorRed)
				if err != nil {
					t.Fatalf("turn %d: DecideAndPlay: %v", turns, err)
				}
				if drew {
					g.AdvanceTurn()
				}
				if got := g.CardCount(); got != DeckSize {
					t.Fatalf("turn %d: card count = %d, want %d", turns, got, DeckSize)
				}
				// Bots play single cards, so with more than two seats the
				// turn always leaves the acting seat.
				if !g.Ended && seats > 2 && g.Current == acting {
					t.Fatalf("turn %d: seat %d kept the turn", turns, acting)
				}
			}
			if !g.Ended {
				t.Fatal("bot playout did not terminate")
			}
			winner := g.WinnerIndex()
			if winner < 0 {
				t.Fatal("ended game has no winner")
			}
			if got := len(g.Seats[winner].Hand); got != 0 {
				t.Errorf("winner hand size = %d, want 0", got)
			}
		})
	}
}
