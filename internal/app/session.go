package app

import (
	"math"
	"sync"
	"time"

	"quizmaster/internal/domain"
)

// QuizSession is one user's run through a deck. It starts Active and moves
// to Graded exactly once, via submit; every mutation after that is rejected.
// The caller owns the session value and passes it into engine operations,
// so independent sessions can run side by side.
type QuizSession struct {
	category string
	title    string

	mu        sync.Mutex
	deck      []domain.Question
	position  int
	answers   map[string]string
	startedAt time.Time
	deadline  *time.Time
	submitted bool
	result    domain.SessionResult
}

func newSession(category, title string, deck []domain.Question, timeLimitMinutes int, now time.Time) *QuizSession {
	s := &QuizSession{
		category:  category,
		title:     title,
		deck:      deck,
		answers:   make(map[string]string),
		startedAt: now,
	}
	// A zero-minute limit means untimed, not instant expiry.
	if timeLimitMinutes > 0 {
		deadline := now.Add(time.Duration(timeLimitMinutes) * time.Minute)
		s.deadline = &deadline
	}
	return s
}

// Category returns the category the deck was drawn from.
func (s *QuizSession) Category() string { return s.category }

// Title returns the quiz title the deck was drawn from.
func (s *QuizSession) Title() string { return s.title }

// StartedAt returns when the session was created.
func (s *QuizSession) StartedAt() time.Time { return s.startedAt }

// Deadline returns the expiry timestamp; ok is false for untimed sessions.
func (s *QuizSession) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline == nil {
		return time.Time{}, false
	}
	return *s.deadline, true
}

// Len returns the deck length.
func (s *QuizSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deck)
}

// Deck returns a copy of the session's question sequence.
func (s *QuizSession) Deck() []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck := make([]domain.Question, len(s.deck))
	copy(deck, s.deck)
	return deck
}

// Position returns the zero-based current position.
func (s *QuizSession) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Current returns the question at the current position. ok is false for an
// empty deck.
func (s *QuizSession) Current() (q domain.Question, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.deck) == 0 {
		return domain.Question{}, false
	}
	return s.deck[s.position], true
}

// Answer returns the recorded answer for a question ID, if any.
func (s *QuizSession) Answer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.answers[questionID]
	return value, ok
}

// RecordAnswer overwrites the answer for a question in the deck. Values are
// not validated here; grading decides correctness. Writes to a graded
// session are rejected.
func (s *QuizSession) RecordAnswer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return domain.ErrSessionGraded
	}
	for i := range s.deck {
		if s.deck[i].ID == questionID {
			s.answers[questionID] = value
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

// MoveTo sets the current position, rejecting anything outside [0, len).
func (s *QuizSession) MoveTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.deck) {
		return domain.ErrPositionOutOfRange
	}
	s.position = index
	return nil
}

// Next advances the position by one.
func (s *QuizSession) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position+1 >= len(s.deck) {
		return domain.ErrPositionOutOfRange
	}
	s.position++
	return nil
}

// Previous moves the position back by one.
func (s *QuizSession) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position-1 < 0 {
		return domain.ErrPositionOutOfRange
	}
	s.position--
	return nil
}

// CanNext reports whether Next would succeed.
func (s *QuizSession) CanNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position+1 < len(s.deck)
}

// CanPrevious reports whether Previous would succeed.
func (s *QuizSession) CanPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position > 0
}

// Remaining returns the time left before the deadline, floored at zero.
// ok is false for untimed sessions.
func (s *QuizSession) Remaining(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deadline == nil {
		return 0, false
	}
	remain := s.deadline.Sub(now)
	if remain < 0 {
		remain = 0
	}
	return remain, true
}

// Submitted reports whether the session has been graded.
func (s *QuizSession) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Result returns the graded result. ok is false while the session is Active.
func (s *QuizSession) Result() (domain.SessionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.submitted
}

// submit grades the deck in order and caches the result. The check-and-set
// of the submitted flag and the grading pass happen under one lock hold, so
// a manual submit racing a timer-forced one resolves to a single grading:
// the first caller sees first=true, the second gets the cached result.
func (s *QuizSession) submit(forced bool) (result domain.SessionResult, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return s.result, false
	}
	s.submitted = true

	correct := 0
	details := make([]domain.AnswerDetail, 0, len(s.deck))
	for _, q := range s.deck {
		recorded, answered := s.answers[q.ID]
		ok := gradeAnswer(q, recorded, answered)
		if ok {
			correct++
		}
		details = append(details, domain.AnswerDetail{
			QuestionID:    q.ID,
			Prompt:        q.Prompt,
			Type:          q.Type,
			UserAnswer:    recorded,
			Answered:      answered,
			CorrectAnswer: q.Answer,
			Correct:       ok,
			Explanation:   q.Explanation,
		})
	}

	pct := 0
	if len(s.deck) > 0 {
		pct = int(math.Round(100 * float64(correct) / float64(len(s.deck))))
	}
	s.result = domain.SessionResult{
		Category:     s.category,
		Title:        s.title,
		Total:        len(s.deck),
		Correct:      correct,
		ScorePercent: pct,
		Forced:       forced,
		Details:      details,
	}
	return s.result, true
}
