package card

import "cmp"

// Ordering compares two cards the way slices.SortStableFunc expects. A nil
// Ordering leaves a collection in insertion order.
type Ordering func(a, b Card) int

// RankThenSuit sorts by rank, then suit.
func RankThenSuit(a, b Card) int {
	if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
		return c
	}
	return cmp.Compare(a.Suit, b.Suit)
}

// SuitThenRank groups a hand by suit.
func SuitThenRank(a, b Card) int {
	if c := cmp.Compare(a.Suit, b.Suit); c != 0 {
		return c
	}
	return cmp.Compare(a.Rank, b.Rank)
}

// TrickOrdering puts the strongest card of a trick first: trumps, then cards
// of the led suit, then everything else, each group by descending strength.
func TrickOrdering(trump, lead Suit) Ordering {
	class := func(c Card) int {
		switch c.Suit {
		case trump:
			return 2
		case lead:
			return 1
		}
		return 0
	}
	return func(a, b Card) int {
		if c := cmp.Compare(class(b), class(a)); c != 0 {
			return c
		}
		return cmp.Compare(b.Rank.Strength(), a.Rank.Strength())
	}
}
