package card

import "fmt"

// Ledger records which collection holds each card. Every collection created
// by (or tracked in) the same Ledger refuses a card another one holds.
//
// Once sealed, cards in tracked collections can only move between them:
// Add, Insert and Remove fail with ErrSealed.
type Ledger struct {
	owners map[ID]*Collection
	sealed bool
}

func NewLedger() *Ledger {
	return &Ledger{owners: make(map[ID]*Collection, DeckSize)}
}

// NewCollection creates an empty collection tracked by l.
func (l *Ledger) NewCollection(name string, opts ...Option) *Collection {
	c := NewCollection(name, opts...)
	c.ledger = l
	return c
}

// Track adopts an existing untracked collection, e.g. a player's hand.
func (l *Ledger) Track(c *Collection) error {
	if c.ledger == l {
		return nil
	}
	if c.ledger != nil {
		return fmt.Errorf("%w: %s", ErrForeignCollection, c.name)
	}
	if l.sealed && len(c.cards) > 0 {
		return fmt.Errorf("%w: track non-empty %s", ErrSealed, c.name)
	}
	for _, card := range c.cards {
		if owner, ok := l.owners[card.ID]; ok {
			return fmt.Errorf("%w: %s is in %s", ErrOwnedElsewhere, card, owner.name)
		}
	}
	c.ledger = l
	for _, card := range c.cards {
		l.owners[card.ID] = c
	}
	return nil
}

// Seal freezes the set of tracked cards.
func (l *Ledger) Seal() { l.sealed = true }

func (l *Ledger) Sealed() bool { return l != nil && l.sealed }

// Owner returns the collection currently holding the card.
func (l *Ledger) Owner(id ID) (*Collection, bool) {
	if l == nil {
		return nil, false
	}
	c, ok := l.owners[id]
	return c, ok
}

// Count is the number of cards held by tracked collections.
func (l *Ledger) Count() int {
	if l == nil {
		return 0
	}
	return len(l.owners)
}

func (l *Ledger) assign(card Card, c *Collection) {
	if l != nil {
		l.owners[card.ID] = c
	}
}

func (l *Ledger) release(card Card) {
	if l != nil {
		delete(l.owners, card.ID)
	}
}
