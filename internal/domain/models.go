package domain

import (
	"fmt"
	"time"
)

// QuestionType discriminates how a question is presented and graded.
type QuestionType string

const (
	// MultipleChoice offers labeled options A..D; the answer is a label.
	MultipleChoice QuestionType = "mcq"
	// TrueFalse offers the literals "True" and "False".
	TrueFalse QuestionType = "tf"
	// FillInBlank takes free text, graded after normalization.
	FillInBlank QuestionType = "fib"
)

// OptionLabels are the choice labels for multiple-choice questions, in order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is one entry of the question bank. Category and Title together
// name the quiz grouping a question belongs to.
type Question struct {
	ID          string       `json:"id"`
	Category    string       `json:"category"`
	Title       string       `json:"title"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"text"`
	Options     []string     `json:"options,omitempty"` // MultipleChoice only
	Answer      string       `json:"answer"`
	Explanation string       `json:"expl,omitempty"`
}

// Validate checks the structural invariants for the question's type:
// a multiple-choice answer must name one of the labels actually offered,
// and only multiple-choice questions may carry options.
func (q Question) Validate() error {
	switch q.Type {
	case MultipleChoice:
		if len(q.Options) == 0 || len(q.Options) > len(OptionLabels) {
			return fmt.Errorf("question %s: %w: %d options", q.ID, ErrInvalidQuestion, len(q.Options))
		}
		for i := range q.Options {
			if q.Answer == OptionLabels[i] {
				return nil
			}
		}
		return fmt.Errorf("question %s: %w: answer %q is not an offered label", q.ID, ErrInvalidQuestion, q.Answer)
	case TrueFalse:
		if len(q.Options) > 0 {
			return fmt.Errorf("question %s: %w: options on true/false question", q.ID, ErrInvalidQuestion)
		}
		if q.Answer != "True" && q.Answer != "False" {
			return fmt.Errorf("question %s: %w: answer %q", q.ID, ErrInvalidQuestion, q.Answer)
		}
		return nil
	case FillInBlank:
		if len(q.Options) > 0 {
			return fmt.Errorf("question %s: %w: options on fill-in-blank question", q.ID, ErrInvalidQuestion)
		}
		return nil
	default:
		return fmt.Errorf("question %s: %w: unknown type %q", q.ID, ErrInvalidQuestion, q.Type)
	}
}

// AnswerDetail is the per-question review record inside a SessionResult.
type AnswerDetail struct {
	QuestionID    string       `json:"questionId"`
	Prompt        string       `json:"text"`
	Type          QuestionType `json:"type"`
	UserAnswer    string       `json:"userAnswer"`
	Answered      bool         `json:"answered"`
	CorrectAnswer string       `json:"correctAnswer"`
	Correct       bool         `json:"correct"`
	Explanation   string       `json:"expl,omitempty"`
}

// SessionResult is the immutable outcome of grading a session once.
type SessionResult struct {
	Category     string         `json:"category"`
	Title        string         `json:"title"`
	Total        int            `json:"total"`
	Correct      int            `json:"correct"`
	ScorePercent int            `json:"scorePct"`
	Forced       bool           `json:"forced"`
	Details      []AnswerDetail `json:"details"`
}

// HistoryEntry is the per-user record of one completed session.
type HistoryEntry struct {
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Correct      int       `json:"correct"`
	Total        int       `json:"total"`
	ScorePercent int       `json:"scorePct"`
	CompletedAt  time.Time `json:"date"`
}

// GuestUser is the history key used when no account is signed in.
const GuestUser = "Guest"

// User is a registered account. PassHash is a SHA-256 hex digest kept for
// demo parity with the browser app; it is not production credential storage.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	PassHash  string    `json:"passhash"`
	Admin     bool      `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategorySummary counts the questions available under one category+title group.
type CategorySummary struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Count    int    `json:"count"`
}
