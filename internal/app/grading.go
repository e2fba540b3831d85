package app

import (
	"strings"

	"quizmaster/internal/domain"
)

// normalizeAnswer lowercases, trims, and collapses runs of internal
// whitespace to a single space. Fill-in-blank answers are compared in this
// form so "  Everest " matches "everest" but "Ever   est" does not.
func normalizeAnswer(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// gradeAnswer reports whether the recorded answer is correct for the
// question. Choice-based types compare exactly and case-sensitively; an
// unanswered question is never correct for them. Fill-in-blank compares
// normalized forms, so an absent answer only matches a canonical answer
// that itself normalizes to empty.
func gradeAnswer(q domain.Question, recorded string, answered bool) bool {
	switch q.Type {
	case domain.MultipleChoice, domain.TrueFalse:
		return answered && recorded == q.Answer
	case domain.FillInBlank:
		if !answered {
			recorded = ""
		}
		return normalizeAnswer(recorded) == normalizeAnswer(q.Answer)
	default:
		return false
	}
}
