package card

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
)

var (
	ErrDuplicateCard     = errors.New("card: duplicate card")
	ErrCardNotFound      = errors.New("card: card not found")
	ErrInsufficientCards = errors.New("card: not enough cards")
	ErrOwnedElsewhere    = errors.New("card: card held by another collection")
	ErrForeignCollection = errors.New("card: collections belong to different ledgers")
	ErrInvalidPosition   = errors.New("card: invalid position")
	ErrSealed            = errors.New("card: ledger is sealed, cards can only be transferred")
)

// Collection is an ordered set of cards: a deck, a hand, the table, a discard
// pile. Cards only enter or leave through Add/Insert/Remove and the transfer
// methods; once the ledger is sealed only the transfer methods work. A Collection is not safe for concurrent use; the owning engine
// serialises access.
type Collection struct {
	name   string
	cards  []Card
	order  Ordering
	ledger *Ledger
}

type Option func(*Collection)

// Ordered keeps the collection sorted by o after every mutation.
func Ordered(o Ordering) Option {
	return func(c *Collection) { c.order = o }
}

// NewCollection creates an empty, untracked collection.
func NewCollection(name string, opts ...Option) *Collection {
	c := &Collection{name: name}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FromCards creates an untracked collection holding cards.
func FromCards(name string, cards []Card, opts ...Option) (*Collection, error) {
	c := NewCollection(name, opts...)
	for _, card := range cards {
		if err := c.Add(card); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collection) Name() string { return c.name }

// Ledger is the ledger tracking c, or nil.
func (c *Collection) Ledger() *Ledger { return c.ledger }

func (c *Collection) Len() int { return len(c.cards) }

func (c *Collection) Empty() bool { return len(c.cards) == 0 }

// Cards returns a copy of the cards in their current order.
func (c *Collection) Cards() []Card {
	return slices.Clone(c.cards)
}

// At returns the card at position i.
func (c *Collection) At(i int) (Card, bool) {
	if i < 0 || i >= len(c.cards) {
		return Card{}, false
	}
	return c.cards[i], true
}

func (c *Collection) IndexOf(card Card) int {
	return slices.IndexFunc(c.cards, func(x Card) bool { return x.ID == card.ID })
}

func (c *Collection) Contains(card Card) bool {
	return c.IndexOf(card) >= 0
}

// ContainsSuit reports whether any card of suit s is held.
func (c *Collection) ContainsSuit(s Suit) bool {
	return slices.ContainsFunc(c.cards, func(x Card) bool { return x.Suit == s })
}

// Add appends card (or places it by the ordering).
func (c *Collection) Add(card Card) error {
	return c.Insert(card, len(c.cards))
}

// Insert places card at position pos. Ordered collections re-sort afterwards.
func (c *Collection) Insert(card Card, pos int) error {
	if pos < 0 || pos > len(c.cards) {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrInvalidPosition, pos, len(c.cards))
	}
	if err := c.checkAdd(card); err != nil {
		return err
	}
	if c.ledger.Sealed() {
		return fmt.Errorf("%w: add %s to %s", ErrSealed, card, c.name)
	}
	c.cards = slices.Insert(c.cards, pos, card)
	c.ledger.assign(card, c)
	c.sort()
	return nil
}

// Remove takes exactly that card out of the collection.
func (c *Collection) Remove(card Card) error {
	i := c.IndexOf(card)
	if i < 0 {
		return fmt.Errorf("%w: %s not in %s", ErrCardNotFound, card, c.name)
	}
	if c.ledger.Sealed() {
		return fmt.Errorf("%w: remove %s from %s", ErrSealed, card, c.name)
	}
	c.cards = slices.Delete(c.cards, i, i+1)
	c.ledger.release(card)
	return nil
}

// TransferTo moves n cards from the front of c to dst, keeping their
// relative order. Either every card moves or none does.
func (c *Collection) TransferTo(dst *Collection, n int) error {
	if n < 0 || n > len(c.cards) {
		return fmt.Errorf("%w: want %d from %s, have %d", ErrInsufficientCards, n, c.name, len(c.cards))
	}
	moving := c.cards[:n]
	if err := c.checkTransfer(dst, moving...); err != nil {
		return err
	}
	moved := slices.Clone(moving)
	c.cards = slices.Delete(c.cards, 0, n)
	dst.cards = append(dst.cards, moved...)
	for _, card := range moved {
		c.ledger.assign(card, dst)
	}
	dst.sort()
	return nil
}

// TransferAll empties c into dst.
func (c *Collection) TransferAll(dst *Collection) error {
	return c.TransferTo(dst, len(c.cards))
}

// MoveTo transfers one specific card to dst.
func (c *Collection) MoveTo(dst *Collection, card Card) error {
	i := c.IndexOf(card)
	if i < 0 {
		return fmt.Errorf("%w: %s not in %s", ErrCardNotFound, card, c.name)
	}
	card = c.cards[i]
	if err := c.checkTransfer(dst, card); err != nil {
		return err
	}
	c.cards = slices.Delete(c.cards, i, i+1)
	dst.cards = append(dst.cards, card)
	c.ledger.assign(card, dst)
	dst.sort()
	return nil
}

// Shuffle permutes the cards uniformly (Fisher-Yates). Ordered collections
// are left sorted.
func (c *Collection) Shuffle(rnd *rand.Rand) {
	if c.order != nil {
		return
	}
	rnd.Shuffle(len(c.cards), func(i, j int) {
		c.cards[i], c.cards[j] = c.cards[j], c.cards[i]
	})
}

func (c *Collection) String() string {
	return fmt.Sprintf("%s%v", c.name, c.cards)
}

func (c *Collection) checkAdd(card Card) error {
	if c.Contains(card) {
		return fmt.Errorf("%w: %s already in %s", ErrDuplicateCard, card, c.name)
	}
	if owner, ok := c.ledger.Owner(card.ID); ok && owner != c {
		return fmt.Errorf("%w: %s is in %s", ErrOwnedElsewhere, card, owner.name)
	}
	return nil
}

func (c *Collection) checkTransfer(dst *Collection, cards ...Card) error {
	if dst == c {
		return fmt.Errorf("%w: %s onto itself", ErrDuplicateCard, c.name)
	}
	if dst.ledger != c.ledger {
		return fmt.Errorf("%w: %s -> %s", ErrForeignCollection, c.name, dst.name)
	}
	for _, card := range cards {
		if dst.Contains(card) {
			return fmt.Errorf("%w: %s already in %s", ErrDuplicateCard, card, dst.name)
		}
	}
	return nil
}

func (c *Collection) sort() {
	if c.order != nil {
		slices.SortStableFunc(c.cards, c.order)
	}
}
