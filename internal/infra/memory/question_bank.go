package memory

import (
	"context"
	"sync"

	"quizmaster/internal/domain"
)

// QuestionBank is an in-memory question store preserving insertion order.
// It serves both as the writable bank for admin operations and as a
// QuestionLoader for quiz sessions (useful for demos and tests).
type QuestionBank struct {
	mu        sync.RWMutex
	order     []string
	questions map[string]domain.Question
}

func NewQuestionBank(seed ...domain.Question) *QuestionBank {
	b := &QuestionBank{questions: make(map[string]domain.Question)}
	for _, q := range seed {
		b.upsertLocked(q)
	}
	return b
}

func (b *QuestionBank) List(_ context.Context) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Question, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.questions[id])
	}
	return out, nil
}

func (b *QuestionBank) Upsert(_ context.Context, q domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upsertLocked(q)
	return nil
}

func (b *QuestionBank) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(b.questions, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}

// LoadQuestions filters the bank to one category+title pool.
func (b *QuestionBank) LoadQuestions(_ context.Context, category, title string) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pool := make([]domain.Question, 0)
	for _, id := range b.order {
		q := b.questions[id]
		if q.Category == category && q.Title == title {
			pool = append(pool, q)
		}
	}
	return pool, nil
}

func (b *QuestionBank) upsertLocked(q domain.Question) {
	if _, ok := b.questions[q.ID]; !ok {
		b.order = append(b.order, q.ID)
	}
	b.questions[q.ID] = q
}
