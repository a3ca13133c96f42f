package engine

import (
	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/player"
	"UpDownRiver/internal/game/table"
)

type Phase int

const (
	PhaseNotStarted Phase = iota
	PhasePlacingBids
	PhasePlayingCards
	PhaseGameComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhasePlacingBids:
		return "placing_bids"
	case PhasePlayingCards:
		return "playing_cards"
	case PhaseGameComplete:
		return "game_complete"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Participant is what the engine needs from a player: a hand it can deal
// into and play from, and a one-time binding to the engine.
type Participant interface {
	ID() string
	Hand() *card.Collection
	Bind(g player.Game) error
	Game() player.Game
}

// Unbinder is implemented by participants that can undo a Bind. The engine
// uses it to roll back a SetParticipants call that failed half way.
type Unbinder interface {
	Unbind(g player.Game)
}

// RoundResult is the bid and trick bookkeeping of one finished round.
type RoundResult struct {
	Round  int            `json:"round"`
	Cards  int            `json:"cards"`
	Trump  card.Card      `json:"trump"`
	Bids   map[string]int `json:"bids"`
	Tricks map[string]int `json:"tricks"`
	Made   []string       `json:"made"` // participants who took exactly their bid
}

// Standing counts rounds where the participant made their bid exactly.
type Standing struct {
	Participant string `json:"participant"`
	BidsMade    int    `json:"bidsMade"`
	Tricks      int    `json:"tricks"`
}

// Census counts the cards in each location. Total is always 52 once the game
// has started.
type Census struct {
	Deck    int `json:"deck"`
	Hands   int `json:"hands"`
	Table   int `json:"table"`
	Discard int `json:"discard"`
	Trump   int `json:"trump"`
}

func (c Census) Total() int {
	return c.Deck + c.Hands + c.Table + c.Discard + c.Trump
}

// View is a consistent snapshot of an engine.
type View struct {
	ID              string                 `json:"id"`
	Phase           Phase                  `json:"phase"`
	Round           int                    `json:"round"`
	CardsPerRound   int                    `json:"cardsPerRound"`
	CanSeeOwnCards  bool                   `json:"canSeeOwnCards"`
	Participants    []string               `json:"participants"`
	Trump           *card.Card             `json:"trump,omitempty"`
	Bids            map[string]int         `json:"bids"`
	AwaitingBids    []string               `json:"awaitingBids,omitempty"`
	Tricks          map[string]int         `json:"tricks"`
	Turn            string                 `json:"turn,omitempty"`
	TricksRemaining int                    `json:"tricksRemaining"`
	LastTrickWinner string                 `json:"lastTrickWinner,omitempty"`
	Table           []table.Play           `json:"table"`
	Hands           map[string][]card.Card `json:"hands,omitempty"`
	Census          Census                 `json:"census"`
	Results         []RoundResult          `json:"results,omitempty"`
	Winners         []string               `json:"winners,omitempty"`
}

// Public strips the hands from a view.
func (v View) Public() View {
	v.Hands = nil
	return v
}
