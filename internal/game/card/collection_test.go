package card

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCard(t *testing.T, r Rank, s Suit) Card {
	t.Helper()
	c, err := New(r, s)
	require.NoError(t, err)
	return c
}

func TestAddRejectsDuplicate(t *testing.T) {
	c := NewCollection("hand")
	ace := mustCard(t, Ace, Spades)

	require.NoError(t, c.Add(ace))
	err := c.Add(ace)
	assert.ErrorIs(t, err, ErrDuplicateCard)
	assert.Equal(t, 1, c.Len())
}

func TestInsertPosition(t *testing.T) {
	a := mustCard(t, Ace, Clubs)
	b := mustCard(t, Two, Clubs)
	x := mustCard(t, Three, Clubs)
	c, err := FromCards("pile", []Card{a, b})
	require.NoError(t, err)

	require.NoError(t, c.Insert(x, 0))
	assert.Equal(t, []Card{x, a, b}, c.Cards())
	assert.ErrorIs(t, c.Insert(mustCard(t, Four, Clubs), 9), ErrInvalidPosition)
}

func TestFromCardsRejectsDuplicates(t *testing.T) {
	a := mustCard(t, Ace, Clubs)
	_, err := FromCards("bad", []Card{a, a})
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func TestRemove(t *testing.T) {
	a := mustCard(t, Ace, Clubs)
	b := mustCard(t, King, Hearts)
	c, _ := FromCards("hand", []Card{a})

	assert.ErrorIs(t, c.Remove(b), ErrCardNotFound)
	require.NoError(t, c.Remove(a))
	assert.True(t, c.Empty())
}

func TestTransferKeepsOrder(t *testing.T) {
	deck, _ := FromCards("deck", Full())
	hand := NewCollection("hand")

	require.NoError(t, deck.TransferTo(hand, 3))
	assert.Equal(t, Full()[:3], hand.Cards())
	assert.Equal(t, DeckSize-3, deck.Len())
	first, _ := deck.At(0)
	assert.Equal(t, ID(3), first.ID)
}

func TestTransferTooMany(t *testing.T) {
	src, _ := FromCards("src", Full()[:2])
	dst := NewCollection("dst")

	assert.ErrorIs(t, src.TransferTo(dst, 3), ErrInsufficientCards)
	assert.Equal(t, 2, src.Len())
	assert.Equal(t, 0, dst.Len())
}

func TestTransferIsAllOrNothing(t *testing.T) {
	cards := Full()[:3]
	src, _ := FromCards("src", cards)
	dst, _ := FromCards("dst", cards[2:])

	err := src.TransferAll(dst)
	assert.ErrorIs(t, err, ErrDuplicateCard)
	assert.Equal(t, cards, src.Cards())
	assert.Equal(t, cards[2:], dst.Cards())
}

func TestOrderedCollectionResorts(t *testing.T) {
	hand := NewCollection("hand", Ordered(SuitThenRank))
	k := mustCard(t, King, Spades)
	two := mustCard(t, Two, Clubs)
	q := mustCard(t, Queen, Clubs)

	require.NoError(t, hand.Add(k))
	require.NoError(t, hand.Add(two))
	require.NoError(t, hand.Insert(q, 0))
	assert.Equal(t, []Card{two, q, k}, hand.Cards())
}

func TestMoveTo(t *testing.T) {
	hand, _ := FromCards("hand", Full()[:4])
	table := NewCollection("table")
	target := Full()[2]

	require.NoError(t, hand.MoveTo(table, target))
	assert.False(t, hand.Contains(target))
	assert.Equal(t, []Card{target}, table.Cards())
	assert.ErrorIs(t, hand.MoveTo(table, target), ErrCardNotFound)
}

func TestShuffleIsPermutation(t *testing.T) {
	deck, _ := FromCards("deck", Full())
	deck.Shuffle(rand.New(rand.NewSource(7)))

	assert.ElementsMatch(t, Full(), deck.Cards())
	assert.NotEqual(t, Full(), deck.Cards())
}

func TestShuffleSameSeedSameOrder(t *testing.T) {
	a, _ := FromCards("a", Full())
	b, _ := FromCards("b", Full())
	a.Shuffle(rand.New(rand.NewSource(42)))
	b.Shuffle(rand.New(rand.NewSource(42)))
	assert.Equal(t, a.Cards(), b.Cards())
}

// Each card should land in each position about trials/n times.
func TestShuffleIsRoughlyUniform(t *testing.T) {
	const (
		n      = 5
		trials = 50000
	)
	rnd := rand.New(rand.NewSource(1))
	var counts [n][n]int
	for i := 0; i < trials; i++ {
		c, _ := FromCards("c", Full()[:n])
		c.Shuffle(rnd)
		for pos, card := range c.Cards() {
			counts[card.ID][pos]++
		}
	}
	want := float64(trials) / n
	for id := 0; id < n; id++ {
		for pos := 0; pos < n; pos++ {
			assert.InEpsilon(t, want, float64(counts[id][pos]), 0.05,
				"card %d at position %d", id, pos)
		}
	}
}

func TestLedgerSingleOwner(t *testing.T) {
	l := NewLedger()
	deck := l.NewCollection("deck")
	hand := l.NewCollection("hand")
	ace := mustCard(t, Ace, Spades)

	require.NoError(t, deck.Add(ace))
	assert.ErrorIs(t, hand.Add(ace), ErrOwnedElsewhere)

	require.NoError(t, deck.TransferTo(hand, 1))
	owner, ok := l.Owner(ace.ID)
	require.True(t, ok)
	assert.Same(t, hand, owner)
	assert.ErrorIs(t, deck.Add(ace), ErrOwnedElsewhere)

	require.NoError(t, hand.Remove(ace))
	_, ok = l.Owner(ace.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, l.Count())
}

func TestLedgerTrack(t *testing.T) {
	l := NewLedger()
	deck := l.NewCollection("deck")
	ace := mustCard(t, Ace, Spades)
	require.NoError(t, deck.Add(ace))

	dirty, _ := FromCards("dirty", []Card{ace})
	assert.ErrorIs(t, l.Track(dirty), ErrOwnedElsewhere)

	hand := NewCollection("hand")
	assert.ErrorIs(t, deck.TransferTo(hand, 1), ErrForeignCollection)

	require.NoError(t, l.Track(hand))
	require.NoError(t, deck.TransferTo(hand, 1))
	assert.Equal(t, 1, l.Count())

	other := NewLedger()
	assert.ErrorIs(t, other.Track(hand), ErrForeignCollection)
}

func TestSealedLedgerOnlyTransfers(t *testing.T) {
	l := NewLedger()
	deck := l.NewCollection("deck")
	hand := l.NewCollection("hand")
	ace := mustCard(t, Ace, Spades)
	king := mustCard(t, King, Spades)
	require.NoError(t, deck.Add(ace))
	require.NoError(t, deck.Add(king))
	l.Seal()
	assert.True(t, l.Sealed())

	require.NoError(t, deck.TransferTo(hand, 1))
	assert.ErrorIs(t, hand.Remove(ace), ErrSealed)
	assert.True(t, hand.Contains(ace))
	assert.Equal(t, 2, l.Count())

	queen := mustCard(t, Queen, Hearts)
	assert.ErrorIs(t, hand.Add(queen), ErrSealed)
	assert.ErrorIs(t, hand.Add(king), ErrOwnedElsewhere)
	assert.Equal(t, 1, hand.Len())

	require.NoError(t, hand.MoveTo(deck, ace))
	assert.Equal(t, 2, deck.Len())

	dirty, _ := FromCards("dirty", []Card{queen})
	assert.ErrorIs(t, l.Track(dirty), ErrSealed)
	require.NoError(t, l.Track(NewCollection("late")))

	// untracked collections are unaffected
	loose := NewCollection("loose")
	require.NoError(t, loose.Add(queen))
	require.NoError(t, loose.Remove(queen))
}
