package card

import (
	"fmt"
)

// Suit 花色 (0-3)
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// NumSuits is the number of suits in the deck.
const NumSuits = 4

// Rank 点数 (1-13), Ace is 1.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

const (
	MinRank = Ace
	MaxRank = King

	// DeckSize is the size of a full deck.
	DeckSize = NumSuits * int(MaxRank)
)

// ID is the arena slot of a card inside a deck (0-51). Two cards with the
// same ID are the same physical card.
type ID int

// Card is an immutable playing card.
type Card struct {
	ID   ID   `json:"id"`
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (s Suit) Valid() bool { return s >= Clubs && s <= Spades }

func (r Rank) Valid() bool { return r >= MinRank && r <= MaxRank }

// Strength is the rank's weight when cards are compared in a trick; the ace
// ranks above the king.
func (r Rank) Strength() int {
	if r == Ace {
		return int(MaxRank) + 1
	}
	return int(r)
}

func (s Suit) String() string {
	suits := []string{"♣", "♦", "♥", "♠"}
	if !s.Valid() {
		return "?"
	}
	return suits[s]
}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if !r.Valid() {
		return "?"
	}
	return fmt.Sprintf("%d", int(r))
}

// New returns the card with the given rank and suit.
func New(r Rank, s Suit) (Card, error) {
	if !r.Valid() {
		return Card{}, fmt.Errorf("card: invalid rank %d", r)
	}
	if !s.Valid() {
		return Card{}, fmt.Errorf("card: invalid suit %d", s)
	}
	return Card{ID: ID(int(s)*int(MaxRank) + int(r) - 1), Suit: s, Rank: r}, nil
}

// FromID returns the card occupying the given arena slot.
func FromID(id ID) (Card, error) {
	if id < 0 || int(id) >= DeckSize {
		return Card{}, fmt.Errorf("card: invalid id %d", id)
	}
	return Card{ID: id, Suit: Suit(int(id) / int(MaxRank)), Rank: Rank(int(id)%int(MaxRank) + 1)}, nil
}

// Full returns every card of the deck exactly once, suit by suit.
func Full() []Card {
	out := make([]Card, 0, DeckSize)
	for s := Clubs; s <= Spades; s++ {
		for r := MinRank; r <= MaxRank; r++ {
			out = append(out, Card{ID: ID(len(out)), Suit: s, Rank: r})
		}
	}
	return out
}

func (c Card) Valid() bool {
	want, err := New(c.Rank, c.Suit)
	return err == nil && want.ID == c.ID
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}
