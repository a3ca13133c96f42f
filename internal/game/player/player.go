package player

import (
	"errors"
	"sync"

	"UpDownRiver/internal/game/card"
)

var ErrAlreadyBound = errors.New("player: already bound to a game")

// Game is what a player gets bound to.
type Game interface {
	ID() string
}

// Seat is the default participant: an identifier, a hand, and the game it
// was registered with. Decision making (console, bot, websocket client) lives
// outside and talks to the game directly.
type Seat struct {
	id   string
	hand *card.Collection

	mu   sync.Mutex
	game Game
}

func New(id string) *Seat {
	return &Seat{
		id:   id,
		hand: card.NewCollection("hand:"+id, card.Ordered(card.SuitThenRank)),
	}
}

func (s *Seat) ID() string { return s.id }

// Hand is handed to the game for dealing and playing. Once the game has
// built its deck the hand only changes through transfers; callers outside
// the game should read hands through the game's snapshot.
func (s *Seat) Hand() *card.Collection { return s.hand }

// Bind attaches the seat to g. It only succeeds once.
func (s *Seat) Bind(g Game) error {
	if g == nil {
		return errors.New("player: nil game")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game != nil {
		return ErrAlreadyBound
	}
	s.game = g
	return nil
}

// Unbind detaches the seat from g. It does nothing if the seat is bound to
// another game.
func (s *Seat) Unbind(g Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == g {
		s.game = nil
	}
}

// Game returns the bound game, or nil.
func (s *Seat) Game() Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}
