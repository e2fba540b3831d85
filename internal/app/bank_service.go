package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"quizmaster/internal/domain"
)

// QuestionBank is the writable view of the question store used by the
// admin operations. Reads for quiz sessions go through QuestionRepository.
type QuestionBank interface {
	List(ctx context.Context) ([]domain.Question, error)
	Upsert(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id string) error
}

// BankService covers the admin side of the question bank: listing,
// editing, and JSON import/export.
type BankService struct {
	bank QuestionBank
}

func NewBankService(bank QuestionBank) *BankService {
	return &BankService{bank: bank}
}

// Categories groups the bank into category+title pairs with counts, sorted
// for stable listing.
func (b *BankService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	questions, err := b.bank.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[[2]string]int)
	for _, q := range questions {
		counts[[2]string{q.Category, q.Title}]++
	}
	summaries := make([]domain.CategorySummary, 0, len(counts))
	for key, count := range counts {
		summaries = append(summaries, domain.CategorySummary{Category: key[0], Title: key[1], Count: count})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Category != summaries[j].Category {
			return summaries[i].Category < summaries[j].Category
		}
		return summaries[i].Title < summaries[j].Title
	})
	return summaries, nil
}

// Search filters the bank by category (exact, empty matches all) and a
// case-insensitive prompt substring.
func (b *BankService) Search(ctx context.Context, category, promptText string) ([]domain.Question, error) {
	questions, err := b.bank.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(promptText)
	filtered := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if category != "" && q.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(q.Prompt), needle) {
			continue
		}
		filtered = append(filtered, q)
	}
	return filtered, nil
}

// Save validates and stores a question, minting an ID when absent.
func (b *BankService) Save(ctx context.Context, q domain.Question) (domain.Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if err := q.Validate(); err != nil {
		return domain.Question{}, err
	}
	if err := b.bank.Upsert(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// Delete removes a question by ID.
func (b *BankService) Delete(ctx context.Context, id string) error {
	return b.bank.Delete(ctx, id)
}

// Export serializes the whole bank as an indented JSON array, the same
// format Import accepts.
func (b *BankService) Export(ctx context.Context) ([]byte, error) {
	questions, err := b.bank.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(questions, "", "  ")
}

// Import merges a JSON array of questions into the bank keyed by ID.
// Records without an ID get a fresh one; records with a known ID replace
// the stored question. Returns the number of records merged.
func (b *BankService) Import(ctx context.Context, data []byte) (int, error) {
	var incoming []domain.Question
	if err := json.Unmarshal(data, &incoming); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	merged := 0
	for _, q := range incoming {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if err := q.Validate(); err != nil {
			return merged, err
		}
		if err := b.bank.Upsert(ctx, q); err != nil {
			return merged, err
		}
		merged++
	}
	return merged, nil
}
