package app

import (
	"math/rand"

	"quizmaster/internal/domain"
)

// SelectDeck copies the pool, applies a Fisher-Yates shuffle using rnd, and
// truncates to min(limit, pool size). The pool itself is never reordered.
// A negative limit is treated as zero, so it yields an empty deck rather
// than the whole pool.
func SelectDeck(pool []domain.Question, limit int, rnd *rand.Rand) []domain.Question {
	deck := make([]domain.Question, len(pool))
	copy(deck, pool)

	for i := len(deck) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	if limit < 0 {
		limit = 0
	}
	if limit > len(deck) {
		limit = len(deck)
	}
	return deck[:limit]
}
