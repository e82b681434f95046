package engine

// Analysis is the pure classification half of the bot policy: which
// playable card the bot should lead with, split into an action-card
// preference and a number-card preference.
type Analysis struct {
	// Action is the preferred action card, EmptyCard when none is playable.
	// Action cards are favored because their effect lands on the seat about
	// to play next.
	Action Card
	// Number is the preferred number card, EmptyCard when none is playable.
	// It sheds the color the hand holds the most of.
	Number Card
	// PreferredColor is the concrete color the hand holds the most of.
	// HasPreferred is false on an empty hand or a tie.
	PreferredColor uint8
	HasPreferred   bool
}

// actionPriority orders action ranks by how much they hurt the next seat.
func actionPriority(rank uint8) int {
	switch rank {
	case RankWildDrawFour:
		return 4
	case RankDrawTwo:
		return 3
	case RankSkip:
		return 2
	case RankReverse:
		return 1
	case RankWild:
		return 0
	default:
		return -1
	}
}

// AnalyzeCards classifies the playable set for the current seat. It does
// not mutate state; DecideAndPlay executes the result.
func (g *Game) AnalyzeCards(playable []Card) Analysis {
	a := Analysis{Action: EmptyCard, Number: EmptyCard}
	a.PreferredColor, a.HasPreferred = mostHeldColor(g.CurrentSeat().Hand)

	for _, c := range playable {
		if c.IsAction() {
			if a.Action == EmptyCard || actionPriority(c.Rank()) > actionPriority(a.Action.Rank()) {
				a.Action = c
			}
			continue
		}
		if a.Number == EmptyCard {
			a.Number = c
		}
		if a.HasPreferred && c.Color() == a.PreferredColor && a.Number.Color() != a.PreferredColor {
			a.Number = c
		}
	}
	return a
}

// DecideAndPlay executes the analyzed choice for the current seat: it
// plays the preferred action card, else the preferred number card, else
// any playable card, and draws when nothing qualifies. For a wild play
// the chosen color is the one the hand holds the most of, falling back
// to fallbackColor on ties or an empty remainder.
//
// The returned drew flag tells the caller a draw happened instead of a
// play, so the session can decide to advance the turn.
func (g *Game) DecideAndPlay(playable []Card, a Analysis, fallbackColor uint8) (drew bool, err error) {
	card := a.Action
	if card == EmptyCard {
		card = a.Number
	}
	if card == EmptyCard && len(playable) > 0 {
		card = playable[0]
	}
	if card == EmptyCard {
		_, err = g.Draw()
		return true, err
	}

	chosen := ColorNone
	if card.IsWild() {
		chosen = fallbackColor
		if a.HasPreferred {
			chosen = a.PreferredColor
		}
		if chosen > ColorBlue {
			chosen = ColorRed
		}
	}
	return false, g.Play([]Card{card}, chosen)
}

// mostHeldColor returns the concrete color appearing most often in hand.
// ok is false for an empty hand or a tie for the maximum.
func mostHeldColor(hand []Card) (color uint8, ok bool) {
	var counts [4]int
	for _, c := range hand {
		if !IsSentinelColor(c.Color()) {
			counts[c.Color()]++
		}
	}
	best, tied := ColorRed, false
	for col := ColorYellow; col <= ColorBlue; col++ {
		switch {
		case counts[col] > counts[best]:
			best, tied = col, false
		case counts[col] == counts[best]:
			tied = true
		}
	}
	if counts[best] == 0 || tied {
		return ColorNone, false
	}
	return best, true
}
