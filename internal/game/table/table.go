package table

import (
	"slices"
	"time"

	"UpDownRiver/internal/game/card"
)

// Table 一桌对局：由 matchmaker 组好，交给 manager 启动 engine
type Table struct {
	ID        string    `json:"id"`
	Pool      string    `json:"pool"`
	Seats     int       `json:"seats"`
	Players   []string  `json:"players"` // addresses e.g. "0xAAA", seat order
	CreatedAt time.Time `json:"createdAt"`
}

// Play is one card put on the table during a trick.
type Play struct {
	Seat   int       `json:"seat"`
	Player string    `json:"player"`
	Card   card.Card `json:"card"`
}

// LeadSuit is the suit of the first card of the trick.
func LeadSuit(plays []Play) (card.Suit, bool) {
	if len(plays) == 0 {
		return 0, false
	}
	return plays[0].Card.Suit, true
}

// Winner returns the play that takes the trick: the highest trump if any
// trump was played, otherwise the highest card of the led suit.
func Winner(plays []Play, trump card.Suit) (Play, bool) {
	lead, ok := LeadSuit(plays)
	if !ok {
		return Play{}, false
	}
	order := card.TrickOrdering(trump, lead)
	best := plays[0]
	for _, p := range plays[1:] {
		if order(p.Card, best.Card) < 0 {
			best = p
		}
	}
	return best, true
}

// Ranked returns the plays strongest first, for display.
func Ranked(plays []Play, trump card.Suit) []Play {
	lead, ok := LeadSuit(plays)
	if !ok {
		return nil
	}
	out := slices.Clone(plays)
	order := card.TrickOrdering(trump, lead)
	slices.SortStableFunc(out, func(a, b Play) int { return order(a.Card, b.Card) })
	return out
}
