package app_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/infra/memory"
)

func startTimedSession(t *testing.T, engine *app.Engine) *app.QuizSession {
	t.Helper()
	session, err := engine.StartSession(context.Background(), "Science", "General Science", 1, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return session
}

func TestTimerForcesSubmissionAtDeadline(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore()
	engine := newTestEngine(history)
	session := startTimedSession(t, engine)
	if err := session.RecordAnswer("q2", "True"); err != nil {
		t.Fatalf("record: %v", err)
	}

	// The driver's clock sits past the 1-minute deadline, so the first tick
	// expires the session without any real waiting.
	expired := time.Now().Add(2 * time.Minute)
	driver := app.NewTimerDriverWithClock(time.Millisecond, func() time.Time { return expired })

	submitted := make(chan struct{})
	stop := driver.Start(session, nil, func() {
		if _, err := engine.Submit(ctx, session, "alice", true); err != nil {
			t.Errorf("forced submit: %v", err)
		}
		close(submitted)
	})
	defer stop()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatalf("timer never forced submission")
	}

	result, ok := session.Result()
	if !ok {
		t.Fatalf("session must be graded")
	}
	if !result.Forced {
		t.Fatalf("expected forced result")
	}
	if result.Correct == 0 {
		t.Fatalf("answers recorded before expiry must still count")
	}

	entries, _ := history.List(ctx, "alice")
	if len(entries) != 1 {
		t.Fatalf("expected one history entry from forced submit, got %d", len(entries))
	}
}

func TestTimerExpiresExactlyOnce(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	session := startTimedSession(t, engine)

	expired := time.Now().Add(2 * time.Minute)
	driver := app.NewTimerDriverWithClock(time.Millisecond, func() time.Time { return expired })

	fires := make(chan struct{}, 4)
	stop := driver.Start(session, nil, func() {
		_, _ = engine.Submit(context.Background(), session, "", true)
		fires <- struct{}{}
	})
	defer stop()

	<-fires
	select {
	case <-fires:
		t.Fatalf("expire callback fired more than once")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTimerStopsWhenSessionGradedElsewhere(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	session := startTimedSession(t, engine)

	// Manual submit before any tick; the driver must notice and never expire.
	if _, err := engine.Submit(context.Background(), session, "", false); err != nil {
		t.Fatalf("manual submit: %v", err)
	}

	driver := app.NewTimerDriverWithClock(time.Millisecond, time.Now)
	fired := make(chan struct{}, 1)
	stop := driver.Start(session, nil, func() { fired <- struct{}{} })
	defer stop()

	select {
	case <-fired:
		t.Fatalf("driver expired a graded session")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTimerStopWaitsForCallbacks(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	session := startTimedSession(t, engine)

	// Once stop returns, neither callback may fire again; callers rely on
	// this to tear down the channels the callbacks write to.
	var mu sync.Mutex
	stopped := false
	driver := app.NewTimerDriver(time.Millisecond)
	stop := driver.Start(session, func(time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			t.Errorf("tick delivered after stop returned")
		}
	}, func() {})

	time.Sleep(5 * time.Millisecond)
	stop()
	mu.Lock()
	stopped = true
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
}

func TestTimerStopIsIdempotent(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	session := startTimedSession(t, engine)

	driver := app.NewTimerDriver(time.Millisecond)
	stop := driver.Start(session, nil, func() {})
	stop()
	stop() // second call must be a no-op
}

func TestTimerSkipsUntimedSessions(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	session, err := engine.StartSession(context.Background(), "Science", "General Science", 0, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	driver := app.NewTimerDriverWithClock(time.Millisecond, func() time.Time { return time.Now().Add(time.Hour) })
	fired := make(chan struct{}, 1)
	stop := driver.Start(session, nil, func() { fired <- struct{}{} })
	defer stop()

	select {
	case <-fired:
		t.Fatalf("untimed session must never expire")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestTimerReportsRemainingOnTick(t *testing.T) {
	engine := newTestEngine(memory.NewHistoryStore())
	engine.SetRand(rand.New(rand.NewSource(2)))
	session := startTimedSession(t, engine)

	driver := app.NewTimerDriver(time.Millisecond)
	ticks := make(chan time.Duration, 1)
	stop := driver.Start(session, func(remaining time.Duration) {
		select {
		case ticks <- remaining:
		default:
		}
	}, func() {})
	defer stop()

	select {
	case remaining := <-ticks:
		if remaining <= 0 || remaining > time.Minute {
			t.Fatalf("unexpected remaining duration %v", remaining)
		}
	case <-time.After(time.Second):
		t.Fatalf("never received a tick")
	}
}
