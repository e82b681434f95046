// Package engine implements the rules of the One shedding card game.
//
// The package is self-contained and free of I/O: it models the deck, the
// seats, turn order, effect resolution, penalty accumulation and win
// detection, and exposes the bot decision policy. All randomness comes
// from an embedded xorshift generator, so a game is fully reproducible
// from its seed.
package engine

import "fmt"

// Color constants — packed into the upper 4 bits of Card.
// ColorAny and ColorNone are sentinels carried only by wild cards;
// legality checks use the game's ActiveColor while one of them is on top.
const (
	ColorRed    uint8 = 0
	ColorYellow uint8 = 1
	ColorGreen  uint8 = 2
	ColorBlue   uint8 = 3
	ColorAny    uint8 = 4 // printed color of Wild
	ColorNone   uint8 = 5 // printed color of WildDrawFour
)

// Rank constants — packed into the lower 4 bits of Card.
// Ranks 0–9 are the number cards.
const (
	RankZero         uint8 = 0
	RankOne          uint8 = 1
	RankTwo          uint8 = 2
	RankThree        uint8 = 3
	RankFour         uint8 = 4
	RankFive         uint8 = 5
	RankSix          uint8 = 6
	RankSeven        uint8 = 7
	RankEight        uint8 = 8
	RankNine         uint8 = 9
	RankSkip         uint8 = 10
	RankReverse      uint8 = 11
	RankDrawTwo      uint8 = 12
	RankWild         uint8 = 13
	RankWildDrawFour uint8 = 14
)

// Card is a packed uint8: upper 4 bits = color, lower 4 bits = rank.
// Equality is plain value equality.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from color and rank.
func NewCard(color, rank uint8) Card {
	return Card((color << 4) | (rank & 0x0F))
}

// Color returns the color bits (upper 4).
func (c Card) Color() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// IsWild reports whether the card is a Wild or WildDrawFour.
func (c Card) IsWild() bool {
	return c.Rank() == RankWild || c.Rank() == RankWildDrawFour
}

// IsAction reports whether the card is a non-number card.
func (c Card) IsAction() bool { return c.Rank() >= RankSkip }

// IsDrawCard reports whether playing the card adds to the pending penalty.
func (c Card) IsDrawCard() bool {
	return c.Rank() == RankDrawTwo || c.Rank() == RankWildDrawFour
}

// IsSentinelColor reports whether the given color is one of the wild
// sentinels rather than a concrete color.
func IsSentinelColor(color uint8) bool {
	return color == ColorAny || color == ColorNone
}

// ColorName returns the lowercase name of a color.
func ColorName(color uint8) string {
	switch color {
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorAny:
		return "any"
	case ColorNone:
		return "none"
	default:
		return "?"
	}
}

// ParseColor maps a concrete color name to its constant.
// Returns ColorNone for anything that is not a concrete color.
func ParseColor(name string) uint8 {
	switch name {
	case "red":
		return ColorRed
	case "yellow":
		return ColorYellow
	case "green":
		return ColorGreen
	case "blue":
		return ColorBlue
	default:
		return ColorNone
	}
}

// RankName returns the display name of a rank.
func RankName(rank uint8) string {
	if rank <= RankNine {
		return fmt.Sprintf("%d", rank)
	}
	switch rank {
	case RankSkip:
		return "skip"
	case RankReverse:
		return "reverse"
	case RankDrawTwo:
		return "draw-two"
	case RankWild:
		return "wild"
	case RankWildDrawFour:
		return "wild-draw-four"
	default:
		return "?"
	}
}

// String implements fmt.Stringer for debugging and logs.
func (c Card) String() string {
	if c == EmptyCard {
		return "empty"
	}
	return ColorName(c.Color()) + "-" + RankName(c.Rank())
}
