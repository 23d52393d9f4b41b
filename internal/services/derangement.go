package services

import (
	"math/rand/v2"

	"secretsanta/internal/models"
)

const (
	// MinParticipants is the smallest roster that can be drawn. With two
	// people the only valid pairing is the swap, so everyone would know it.
	MinParticipants = 3
	// MaxDrawAttempts bounds the shuffle-and-check loop.
	MaxDrawAttempts = 100
)

// RandomSource yields integers uniformly distributed in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// shuffle returns a Fisher-Yates permutation of participants. The input is not modified.
func shuffle(participants []models.Participant, rng RandomSource) []models.Participant {
	shuffled := make([]models.Participant, len(participants))
	copy(shuffled, participants)
	for i := len(shuffled) - 1; i >= 1; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// isDerangement reports whether no position of shuffled holds the same
// participant as the same position of original.
func isDerangement(original, shuffled []models.Participant) bool {
	for i := range original {
		if original[i].ID == shuffled[i].ID {
			return false
		}
	}
	return true
}

// derange shuffles until it finds a derangement of participants or runs out
// of attempts. It returns the receivers aligned with participants, the
// number of attempts used and whether a derangement was found.
func derange(participants []models.Participant, rng RandomSource, maxAttempts int) ([]models.Participant, int, bool) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		receivers := shuffle(participants, rng)
		if isDerangement(participants, receivers) {
			return receivers, attempt, true
		}
	}
	return nil, maxAttempts, false
}
