package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardsPerRound(t *testing.T) {
	var got []int
	for r := 1; r <= Rounds; r++ {
		got = append(got, CardsPerRound(r))
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 7, 6, 5, 4, 3, 2, 1}, got)
	assert.Equal(t, 0, CardsPerRound(0))
	assert.Equal(t, 0, CardsPerRound(Rounds+1))
}

func TestOneCardRoundsAreBlind(t *testing.T) {
	for r := 1; r <= Rounds; r++ {
		if CardsPerRound(r) == 1 {
			assert.False(t, CanSeeOwnCards(r), "round %d", r)
			assert.True(t, CanSeeOthersCards(r), "round %d", r)
		} else {
			assert.True(t, CanSeeOwnCards(r), "round %d", r)
		}
	}
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 7, MaxPlayers())
	for n := MinPlayers; n <= MaxPlayers(); n++ {
		assert.NoError(t, checkCapacity(n), "%d players", n)
	}
	assert.ErrorIs(t, checkCapacity(MaxPlayers()+1), ErrInvalidConfig)
}

func TestLeaderRotates(t *testing.T) {
	assert.Equal(t, 0, leaderFor(1, 3))
	assert.Equal(t, 1, leaderFor(2, 3))
	assert.Equal(t, 2, leaderFor(3, 3))
	assert.Equal(t, 0, leaderFor(4, 3))
}
