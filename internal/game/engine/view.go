package engine

import (
	"fmt"
	"slices"

	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/table"
)

// Read-only queries. Each takes the read lock and returns copies.

func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// Round is the current round number, 0 before the game starts.
func (e *Engine) Round() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.round
}

func (e *Engine) CardsPerRound() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CardsPerRound(e.round)
}

func (e *Engine) CanSeeOwnCards() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CanSeeOwnCards(e.round)
}

func (e *Engine) CanSeeOthersCards() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CanSeeOthersCards(e.round)
}

// Participants returns the seated participants in seat order, or nil.
func (e *Engine) Participants() []Participant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.participants)
}

// Participant looks a seated participant up by ID.
func (e *Engine) Participant(id string) (Participant, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.participants {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Hand returns a copy of the hand of participant id.
func (e *Engine) Hand(id string) ([]card.Card, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.participants {
		if p.ID() == id {
			return p.Hand().Cards(), true
		}
	}
	return nil, false
}

// Trump returns the turned-up card of the current round.
func (e *Engine) Trump() (card.Card, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trump.At(0)
}

// CurrentBids returns the bids placed so far in the current round.
func (e *Engine) CurrentBids() (map[string]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.round == 0 {
		return nil, fmt.Errorf("%w: no round is in progress", ErrInvalidState)
	}
	return e.bySeat(e.bids[e.round]), nil
}

// TricksTaken returns the tricks won so far in the current round.
func (e *Engine) TricksTaken() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.bySeat(e.tricks[e.round])
}

// Turn returns the participant expected to play a card.
func (e *Engine) Turn() (Participant, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.phase != PhasePlayingCards || e.turn < 0 {
		return nil, false
	}
	return e.participants[e.turn], true
}

func (e *Engine) TricksRemaining() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tricksRemaining
}

// LastTrickWinner is the winner of the latest trick of the current round.
func (e *Engine) LastTrickWinner() (Participant, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastTrickWinner < 0 {
		return nil, false
	}
	return e.participants[e.lastTrickWinner], true
}

// Table returns the cards of the trick in progress, in play order.
func (e *Engine) Table() []table.Play {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.plays)
}

func (e *Engine) Results() []RoundResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.results)
}

func (e *Engine) Standings() []Standing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.standings()
}

func (e *Engine) Census() Census {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.census()
}

func (e *Engine) census() Census {
	c := Census{Table: e.table.Len(), Discard: e.discard.Len(), Trump: e.trump.Len()}
	if e.deck != nil {
		c.Deck = e.deck.Len()
	}
	for _, h := range e.hands() {
		c.Hands += h.Len()
	}
	return c
}

// View returns a full snapshot, hands included.
func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v := View{
		ID:              e.id,
		Phase:           e.phase,
		Round:           e.round,
		CardsPerRound:   CardsPerRound(e.round),
		CanSeeOwnCards:  CanSeeOwnCards(e.round),
		Bids:            e.bySeat(e.bids[e.round]),
		Tricks:          e.bySeat(e.tricks[e.round]),
		TricksRemaining: e.tricksRemaining,
		Table:           slices.Clone(e.plays),
		Hands:           e.handsSnapshot(),
		Census:          e.census(),
		Results:         slices.Clone(e.results),
	}
	for seat, p := range e.participants {
		v.Participants = append(v.Participants, p.ID())
		if _, ok := e.bids[e.round][seat]; e.phase == PhasePlacingBids && !ok {
			v.AwaitingBids = append(v.AwaitingBids, p.ID())
		}
	}
	if c, ok := e.trump.At(0); ok {
		v.Trump = &c
	}
	if e.phase == PhasePlayingCards && e.turn >= 0 {
		v.Turn = e.participants[e.turn].ID()
	}
	if e.lastTrickWinner >= 0 {
		v.LastTrickWinner = e.participants[e.lastTrickWinner].ID()
	}
	if e.phase == PhaseGameComplete {
		v.Winners = leaders(e.standings())
	}
	return v
}
