package app

import (
	"math/rand"
	"testing"

	"quizmaster/internal/domain"
)

func TestSelectDeckBound(t *testing.T) {
	pool := makePool(7)

	cases := []struct {
		limit int
		want  int
	}{
		{limit: 3, want: 3},
		{limit: 7, want: 7},
		{limit: 10, want: 7},
		{limit: 0, want: 0},
		{limit: -1, want: 0},
	}
	for _, tc := range cases {
		deck := SelectDeck(pool, tc.limit, rand.New(rand.NewSource(1)))
		if len(deck) != tc.want {
			t.Fatalf("limit %d: expected %d questions, got %d", tc.limit, tc.want, len(deck))
		}
		seen := make(map[string]bool)
		for _, q := range deck {
			if seen[q.ID] {
				t.Fatalf("limit %d: duplicate question %s", tc.limit, q.ID)
			}
			seen[q.ID] = true
			if !inPool(pool, q.ID) {
				t.Fatalf("limit %d: question %s not from pool", tc.limit, q.ID)
			}
		}
	}
}

func TestSelectDeckDoesNotMutatePool(t *testing.T) {
	pool := makePool(5)
	before := make([]string, len(pool))
	for i, q := range pool {
		before[i] = q.ID
	}

	_ = SelectDeck(pool, 3, rand.New(rand.NewSource(42)))

	for i, q := range pool {
		if q.ID != before[i] {
			t.Fatalf("pool mutated at %d: %s != %s", i, q.ID, before[i])
		}
	}
}

func TestSelectDeckDeterministicForFixedSource(t *testing.T) {
	pool := makePool(6)

	first := SelectDeck(pool, 6, rand.New(rand.NewSource(7)))
	second := SelectDeck(pool, 6, rand.New(rand.NewSource(7)))
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("expected identical order for fixed source, diverged at %d", i)
		}
	}
}

func TestSelectDeckEmptyPool(t *testing.T) {
	deck := SelectDeck(nil, 5, rand.New(rand.NewSource(1)))
	if len(deck) != 0 {
		t.Fatalf("expected empty deck, got %d", len(deck))
	}
}

func makePool(n int) []domain.Question {
	pool := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, domain.Question{
			ID:       string(rune('a' + i)),
			Category: "Science",
			Title:    "General Science",
			Type:     domain.TrueFalse,
			Prompt:   "Prompt",
			Answer:   "True",
		})
	}
	return pool
}

func inPool(pool []domain.Question, id string) bool {
	for _, q := range pool {
		if q.ID == id {
			return true
		}
	}
	return false
}
