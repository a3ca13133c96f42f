package card

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullDeckIsUnique(t *testing.T) {
	deck := Full()
	require.Len(t, deck, DeckSize)

	seen := make(map[ID]bool)
	pairs := make(map[[2]int]bool)
	for i, c := range deck {
		assert.Equal(t, ID(i), c.ID)
		assert.True(t, c.Valid(), "card %v should be valid", c)
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
		pairs[[2]int{int(c.Suit), int(c.Rank)}] = true
	}
	assert.Len(t, pairs, DeckSize)
}

func TestNewAndFromIDAgree(t *testing.T) {
	for _, c := range Full() {
		got, err := New(c.Rank, c.Suit)
		require.NoError(t, err)
		assert.Equal(t, c, got)

		byID, err := FromID(c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, byID)
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	_, err := New(0, Clubs)
	assert.Error(t, err)
	_, err = New(King+1, Clubs)
	assert.Error(t, err)
	_, err = New(Ace, Spades+1)
	assert.Error(t, err)
	_, err = FromID(ID(DeckSize))
	assert.Error(t, err)
	assert.False(t, Card{ID: 3, Suit: Clubs, Rank: Ace}.Valid())
}

func TestString(t *testing.T) {
	c, _ := New(Ace, Spades)
	assert.Equal(t, "A♠", c.String())
	c, _ = New(Ten, Hearts)
	assert.Equal(t, "10♥", c.String())
	c, _ = New(Queen, Diamonds)
	assert.Equal(t, "Q♦", c.String())
}

func TestTrickOrdering(t *testing.T) {
	mk := func(r Rank, s Suit) Card { c, _ := New(r, s); return c }

	cards := []Card{
		mk(King, Clubs),   // off suit
		mk(Two, Hearts),   // led
		mk(Ace, Hearts),   // led, ace high
		mk(Three, Spades), // trump
		mk(Ten, Spades),   // trump
	}
	slices.SortStableFunc(cards, TrickOrdering(Spades, Hearts))
	assert.Equal(t, []Card{
		mk(Ten, Spades), mk(Three, Spades), mk(Ace, Hearts), mk(Two, Hearts), mk(King, Clubs),
	}, cards)
}

func TestRankThenSuit(t *testing.T) {
	a, _ := New(Two, Spades)
	b, _ := New(Three, Clubs)
	c, _ := New(Two, Clubs)
	cards := []Card{a, b, c}
	slices.SortStableFunc(cards, RankThenSuit)
	assert.Equal(t, []Card{c, a, b}, cards)

	slices.SortStableFunc(cards, SuitThenRank)
	assert.Equal(t, []Card{c, b, a}, cards)
}
