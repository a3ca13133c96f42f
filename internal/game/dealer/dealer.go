package dealer

import (
	"fmt"
	"math/rand"

	"UpDownRiver/internal/game/card"
)

// Dealer 只负责建牌、洗牌与发牌（无规则判断）
type Dealer struct {
	rnd *rand.Rand
}

func NewDealer(rnd *rand.Rand) *Dealer {
	return &Dealer{rnd: rnd}
}

// NewSeeded is a dealer with its own deterministic source.
func NewSeeded(seed int64) *Dealer {
	return NewDealer(rand.New(rand.NewSource(seed)))
}

// BuildDeck puts all 52 cards, each exactly once, into a fresh deck tracked
// by ledger, then seals the ledger.
func (d *Dealer) BuildDeck(ledger *card.Ledger) (*card.Collection, error) {
	deck := ledger.NewCollection("deck")
	for _, c := range card.Full() {
		if err := deck.Add(c); err != nil {
			return nil, fmt.Errorf("build deck: %w", err)
		}
	}
	ledger.Seal()
	return deck, nil
}

func (d *Dealer) Shuffle(deck *card.Collection) {
	deck.Shuffle(d.rnd)
}

// Deal gives perHand cards to every hand, one card per hand per pass, in
// hand order. Nothing moves if the deck is too small.
func (d *Dealer) Deal(deck *card.Collection, hands []*card.Collection, perHand int) error {
	if need := perHand * len(hands); deck.Len() < need {
		return fmt.Errorf("deal %d x %d: %w (deck has %d)", len(hands), perHand, card.ErrInsufficientCards, deck.Len())
	}
	for i := 0; i < perHand; i++ {
		for _, h := range hands {
			if err := deck.TransferTo(h, 1); err != nil {
				return fmt.Errorf("deal: %w", err)
			}
		}
	}
	return nil
}

// TurnUp moves the top card of the deck into slot and returns it.
func (d *Dealer) TurnUp(deck, slot *card.Collection) (card.Card, error) {
	top, ok := deck.At(0)
	if !ok {
		return card.Card{}, fmt.Errorf("turn up: %w", card.ErrInsufficientCards)
	}
	if err := deck.TransferTo(slot, 1); err != nil {
		return card.Card{}, fmt.Errorf("turn up: %w", err)
	}
	return top, nil
}
