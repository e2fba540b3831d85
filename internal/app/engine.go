package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"quizmaster/internal/domain"
)

// QuestionRepository loads question pools (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, category, title string) ([]domain.Question, error)
}

// HistorySink records completed session outcomes, keyed by username.
type HistorySink interface {
	Append(ctx context.Context, username string, entry domain.HistoryEntry) error
}

// Engine owns the quiz session use cases: deck selection, answer capture,
// navigation, and one-shot grading. Sessions it hands out are owned by the
// caller; the engine never keeps a "current session" of its own.
type Engine struct {
	questions QuestionRepository
	history   HistorySink
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewEngine(questions QuestionRepository, history HistorySink) *Engine {
	return NewEngineWithClock(questions, history, time.Now)
}

// NewEngineWithClock is test-only for deterministic timestamps.
func NewEngineWithClock(questions QuestionRepository, history HistorySink, now func() time.Time) *Engine {
	return &Engine{
		questions: questions,
		history:   history,
		now:       now,
		rnd:       rand.New(rand.NewSource(now().UnixNano())),
	}
}

// SetRand swaps the shuffle source for deterministic deck selection in tests.
func (e *Engine) SetRand(rnd *rand.Rand) {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	e.rnd = rnd
}

// StartSession draws a shuffled deck of up to questionLimit questions for
// the category+title group and returns a fresh Active session. An empty
// filtered pool is not an error: the session simply carries a zero-length
// deck and grades to 0/0. timeLimitMinutes greater than zero arms a
// deadline; zero means untimed.
func (e *Engine) StartSession(ctx context.Context, category, title string, timeLimitMinutes, questionLimit int) (*QuizSession, error) {
	pool, err := e.questions.GetQuestions(ctx, category, title)
	if err != nil {
		return nil, fmt.Errorf("load question pool: %w", err)
	}

	e.rndMu.Lock()
	deck := SelectDeck(pool, questionLimit, e.rnd)
	e.rndMu.Unlock()

	return newSession(category, title, deck, timeLimitMinutes, e.now()), nil
}

// Submit grades the session if it is still Active and appends a history
// entry for username (GuestUser when empty) exactly once. Repeat calls
// return the cached result and touch nothing. A failed history write is
// reported alongside the result; the session stays cleanly Graded either
// way, so the caller can retry or surface the error without re-grading.
func (e *Engine) Submit(ctx context.Context, s *QuizSession, username string, forced bool) (domain.SessionResult, error) {
	result, first := s.submit(forced)
	if !first {
		return result, nil
	}

	if username == "" {
		username = domain.GuestUser
	}
	entry := domain.HistoryEntry{
		Category:     result.Category,
		Title:        result.Title,
		Correct:      result.Correct,
		Total:        result.Total,
		ScorePercent: result.ScorePercent,
		CompletedAt:  e.now(),
	}
	if err := e.history.Append(ctx, username, entry); err != nil {
		return result, fmt.Errorf("append history: %w", err)
	}
	return result, nil
}
