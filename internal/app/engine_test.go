package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Category: "Science", Title: "General Science", Type: domain.MultipleChoice,
			Prompt: "Symbol for water?", Options: []string{"H2O", "O2", "CO2", "H2"}, Answer: "A", Explanation: "Water is H2O."},
		{ID: "q2", Category: "Science", Title: "General Science", Type: domain.TrueFalse,
			Prompt: "The sun is a star.", Answer: "True"},
		{ID: "q3", Category: "Science", Title: "General Science", Type: domain.FillInBlank,
			Prompt: "Mount ____ is the highest.", Answer: "Everest"},
		{ID: "q4", Category: "History", Title: "World History", Type: domain.TrueFalse,
			Prompt: "Rome fell in 476.", Answer: "True"},
	}
}

type countingSink struct {
	sink    app.HistorySink
	calls   int
	failing bool
}

func (c *countingSink) Append(ctx context.Context, username string, entry domain.HistoryEntry) error {
	c.calls++
	if c.failing {
		return errors.New("sink unavailable")
	}
	return c.sink.Append(ctx, username, entry)
}

func newTestEngine(sink app.HistorySink) *app.Engine {
	bank := memory.NewQuestionBank(testQuestions()...)
	repo := memory.NewQuestionRepository(bank, time.Minute)
	engine := app.NewEngine(repo, sink)
	engine.SetRand(rand.New(rand.NewSource(1)))
	return engine
}

func TestStartSessionFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(memory.NewHistoryStore())

	session, err := engine.StartSession(ctx, "Science", "General Science", 0, 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Len() != 2 {
		t.Fatalf("expected 2-question deck, got %d", session.Len())
	}
	for _, q := range session.Deck() {
		if q.Category != "Science" || q.Title != "General Science" {
			t.Fatalf("deck holds question outside the group: %+v", q)
		}
	}
	if session.Position() != 0 {
		t.Fatalf("expected position 0, got %d", session.Position())
	}
}

func TestStartSessionEmptyPool(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(memory.NewHistoryStore())

	session, err := engine.StartSession(ctx, "Music", "Jazz Basics", 0, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Len() != 0 {
		t.Fatalf("expected zero-length deck, got %d", session.Len())
	}

	result, err := engine.Submit(ctx, session, "", false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Total != 0 || result.Correct != 0 || result.ScorePercent != 0 || len(result.Details) != 0 {
		t.Fatalf("expected zeroed result, got %+v", result)
	}
}

func TestSubmitWritesHistoryExactlyOnce(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore()
	sink := &countingSink{sink: history}
	engine := newTestEngine(sink)

	session, err := engine.StartSession(ctx, "History", "World History", 0, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.RecordAnswer("q4", "True"); err != nil {
		t.Fatalf("record: %v", err)
	}

	manual, err := engine.Submit(ctx, session, "alice", false)
	if err != nil {
		t.Fatalf("manual submit: %v", err)
	}
	forced, err := engine.Submit(ctx, session, "alice", true)
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}

	if manual.Correct != forced.Correct || manual.ScorePercent != forced.ScorePercent {
		t.Fatalf("repeat submit changed the result: %+v vs %+v", forced, manual)
	}
	if forced.Forced {
		t.Fatalf("repeat call must return the original manual result")
	}
	if sink.calls != 1 {
		t.Fatalf("expected exactly one history append, got %d", sink.calls)
	}

	entries, err := history.List(ctx, "alice")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	if entries[0].ScorePercent != 100 || entries[0].Correct != 1 || entries[0].Total != 1 {
		t.Fatalf("unexpected history entry: %+v", entries[0])
	}
}

func TestSubmitUsesGuestWhenNoUser(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore()
	engine := newTestEngine(history)

	session, _ := engine.StartSession(ctx, "History", "World History", 0, 10)
	if _, err := engine.Submit(ctx, session, "", false); err != nil {
		t.Fatalf("submit: %v", err)
	}

	entries, _ := history.List(ctx, domain.GuestUser)
	if len(entries) != 1 {
		t.Fatalf("expected guest history entry, got %d", len(entries))
	}
}

func TestSubmitSurvivesHistoryFailure(t *testing.T) {
	ctx := context.Background()
	sink := &countingSink{sink: memory.NewHistoryStore(), failing: true}
	engine := newTestEngine(sink)

	session, _ := engine.StartSession(ctx, "History", "World History", 0, 10)
	result, err := engine.Submit(ctx, session, "alice", false)
	if err == nil {
		t.Fatalf("expected history failure to surface")
	}
	if result.Total != 1 {
		t.Fatalf("result must still be returned, got %+v", result)
	}
	if !session.Submitted() {
		t.Fatalf("session must stay cleanly graded after a sink failure")
	}

	// Repeat submits absorb: no re-grade, no second sink call.
	if _, err := engine.Submit(ctx, session, "alice", false); err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if sink.calls != 1 {
		t.Fatalf("expected one sink call, got %d", sink.calls)
	}
}

func TestConcurrentManualAndForcedSubmit(t *testing.T) {
	ctx := context.Background()
	sink := &countingSink{sink: memory.NewHistoryStore()}
	engine := newTestEngine(sink)

	session, _ := engine.StartSession(ctx, "Science", "General Science", 1, 10)

	done := make(chan domain.SessionResult, 2)
	go func() {
		result, _ := engine.Submit(ctx, session, "alice", false)
		done <- result
	}()
	go func() {
		result, _ := engine.Submit(ctx, session, "alice", true)
		done <- result
	}()

	first := <-done
	second := <-done
	if first.Correct != second.Correct || first.ScorePercent != second.ScorePercent || first.Forced != second.Forced {
		t.Fatalf("racing submits produced different results: %+v vs %+v", first, second)
	}
	if sink.calls != 1 {
		t.Fatalf("expected exactly one grading pass, sink calls=%d", sink.calls)
	}
}
