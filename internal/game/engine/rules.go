package engine

import (
	"fmt"

	"UpDownRiver/internal/game/card"
)

const (
	// Rounds in a game: hand size climbs to PeakCards and back down.
	Rounds     = 14
	PeakCards  = 7
	MinPlayers = 2
)

// CardsPerRound is the hand size dealt in round r (1..14).
func CardsPerRound(r int) int {
	if r < 1 || r > Rounds {
		return 0
	}
	if r > PeakCards {
		return Rounds + 1 - r
	}
	return r
}

// CanSeeOwnCards is false in one-card rounds: the card is held facing the
// other players.
func CanSeeOwnCards(r int) bool {
	return CardsPerRound(r) != 1
}

func CanSeeOthersCards(r int) bool {
	return !CanSeeOwnCards(r)
}

// MaxPlayers is the largest table that can be dealt every round plus a
// trump card from one deck.
func MaxPlayers() int {
	return (card.DeckSize - 1) / maxCardsPerRound()
}

func maxCardsPerRound() int {
	most := 0
	for r := 1; r <= Rounds; r++ {
		most = max(most, CardsPerRound(r))
	}
	return most
}

func checkCapacity(players int) error {
	for r := 1; r <= Rounds; r++ {
		if need := players*CardsPerRound(r) + 1; need > card.DeckSize {
			return fmt.Errorf("%w: %d players need %d cards in round %d, deck has %d",
				ErrInvalidConfig, players, need, r, card.DeckSize)
		}
	}
	return nil
}

// leaderFor is the seat that leads the first trick of round r; it moves one
// seat to the left every round.
func leaderFor(r, players int) int {
	return (r - 1) % players
}
