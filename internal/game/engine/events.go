package engine

import (
	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/table"
)

type EventKind string

const (
	EventRoundDealt    EventKind = "round_dealt"
	EventBidPlaced     EventKind = "bid_placed"
	EventBiddingClosed EventKind = "bidding_closed"
	EventCardPlayed    EventKind = "card_played"
	EventTrickWon      EventKind = "trick_won"
	EventRoundComplete EventKind = "round_complete"
	EventGameComplete  EventKind = "game_complete"
)

// Event describes one thing that happened to a game. Events carry copies of
// the state they refer to, so they stay valid after the engine moves on.
type Event struct {
	Kind        EventKind              `json:"kind"`
	GameID      string                 `json:"gameId"`
	Round       int                    `json:"round"`
	Participant string                 `json:"participant,omitempty"` // actor, trick winner, or next to act
	Bid         int                    `json:"bid,omitempty"`
	Card        *card.Card             `json:"card,omitempty"`
	Trump       *card.Card             `json:"trump,omitempty"`
	Trick       []table.Play           `json:"trick,omitempty"`
	Hands       map[string][]card.Card `json:"-"`
	Result      *RoundResult           `json:"result,omitempty"`
	Standings   []Standing             `json:"standings,omitempty"`
	Winners     []string               `json:"winners,omitempty"`
}

// Notifier receives events after the engine's state lock is released, so
// Notify may call the engine's queries. It runs while the next operation's
// events are held back: calling PlaceBid, PlayCard or any other mutating
// method from inside Notify deadlocks. Hand such work to another goroutine.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }
