package engine

import (
	"errors"
	"sync"
	"testing"

	"UpDownRiver/internal/game/card"
	"UpDownRiver/internal/game/player"
	"UpDownRiver/internal/game/table"
	"UpDownRiver/internal/utils"

	"github.com/stretchr/testify/require"
)

func seats(n int) []Participant {
	out := make([]Participant, n)
	for i := range out {
		out[i] = player.New(string(rune('A' + i)))
	}
	return out
}

func newTestEngine(t *testing.T, n int, opts ...Option) (*Engine, []Participant) {
	t.Helper()
	opts = append([]Option{WithSeed(42), WithLogger(utils.Discard())}, opts...)
	e := New(opts...)
	ps := seats(n)
	require.NoError(t, e.SetParticipants(ps))
	return e, ps
}

func startedEngine(t *testing.T, n int, opts ...Option) (*Engine, []Participant) {
	t.Helper()
	e, ps := newTestEngine(t, n, opts...)
	require.NoError(t, e.StartGame())
	return e, ps
}

// legalCard picks the first card p may play on the current trick.
func legalCard(e *Engine, p Participant) card.Card {
	hand, _ := e.Hand(p.ID())
	if lead, ok := table.LeadSuit(e.Table()); ok {
		for _, c := range hand {
			if c.Suit == lead {
				return c
			}
		}
	}
	return hand[0]
}

func bidAll(t *testing.T, e *Engine, ps []Participant, bid int) {
	t.Helper()
	for _, p := range ps {
		require.NoError(t, e.PlaceBid(p, min(bid, e.CardsPerRound())))
	}
}

// playTrick has every seat play one legal card, starting with whoever is on turn.
func playTrick(t *testing.T, e *Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p, ok := e.Turn()
		require.True(t, ok)
		require.NoError(t, e.PlayCard(p, legalCard(e, p)))
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) count(k EventKind) int {
	n := 0
	for _, got := range r.kinds() {
		if got == k {
			n++
		}
	}
	return n
}

// ownHand is a participant whose hand is supplied by the test.
type ownHand struct {
	*player.Seat
	hand *card.Collection
}

func (o ownHand) Hand() *card.Collection { return o.hand }

// refusing never accepts a game.
type refusing struct{ *player.Seat }

func (refusing) Bind(player.Game) error { return errors.New("nope") }
