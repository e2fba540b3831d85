package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
)

func TestBankCategories(t *testing.T) {
	ctx := context.Background()
	bank := app.NewBankService(memory.NewQuestionBank(testQuestions()...))

	summaries, err := bank.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(summaries))
	}
	// Sorted by category then title: History first.
	if summaries[0].Category != "History" || summaries[0].Count != 1 {
		t.Fatalf("unexpected first group: %+v", summaries[0])
	}
	if summaries[1].Category != "Science" || summaries[1].Count != 3 {
		t.Fatalf("unexpected second group: %+v", summaries[1])
	}
}

func TestBankSearch(t *testing.T) {
	ctx := context.Background()
	bank := app.NewBankService(memory.NewQuestionBank(testQuestions()...))

	byCategory, err := bank.Search(ctx, "Science", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byCategory) != 3 {
		t.Fatalf("expected 3 science questions, got %d", len(byCategory))
	}

	byPrompt, err := bank.Search(ctx, "", "MOUNT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byPrompt) != 1 || byPrompt[0].ID != "q3" {
		t.Fatalf("expected the Everest question, got %+v", byPrompt)
	}
}

func TestBankSaveValidatesAndMintsIDs(t *testing.T) {
	ctx := context.Background()
	bank := app.NewBankService(memory.NewQuestionBank())

	saved, err := bank.Save(ctx, domain.Question{
		Category: "Science", Title: "General Science", Type: domain.TrueFalse,
		Prompt: "Water boils at 100C at sea level.", Answer: "True",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected minted ID")
	}

	_, err = bank.Save(ctx, domain.Question{
		Category: "Science", Title: "General Science", Type: domain.MultipleChoice,
		Prompt: "Pick one", Options: []string{"x", "y"}, Answer: "Z",
	})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected invalid question, got %v", err)
	}

	_, err = bank.Save(ctx, domain.Question{
		Category: "Science", Title: "General Science", Type: domain.FillInBlank,
		Prompt: "____", Options: []string{"bogus"}, Answer: "x",
	})
	if !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("options on fill-in-blank must be rejected, got %v", err)
	}
}

func TestBankImportMergesByID(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionBank(testQuestions()...)
	bank := app.NewBankService(store)

	payload, _ := json.Marshal([]domain.Question{
		// Existing ID: replaces the stored record.
		{ID: "q2", Category: "Science", Title: "General Science", Type: domain.TrueFalse,
			Prompt: "The sun is a planet.", Answer: "False"},
		// No ID: gets a fresh one.
		{Category: "Geography", Title: "World Geography", Type: domain.FillInBlank,
			Prompt: "The ____ is the longest river.", Answer: "Nile"},
	})

	merged, err := bank.Import(ctx, payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if merged != 2 {
		t.Fatalf("expected 2 merged, got %d", merged)
	}

	all, _ := store.List(ctx)
	if len(all) != len(testQuestions())+1 {
		t.Fatalf("expected one net new question, got %d total", len(all))
	}
	for _, q := range all {
		if q.ID == "q2" && q.Answer != "False" {
			t.Fatalf("existing ID must be replaced, got %+v", q)
		}
		if q.ID == "" {
			t.Fatalf("imported question missing ID")
		}
	}
}

func TestBankImportRejectsNonArray(t *testing.T) {
	bank := app.NewBankService(memory.NewQuestionBank())
	if _, err := bank.Import(context.Background(), []byte(`{"not":"an array"}`)); !errors.Is(err, domain.ErrInvalidImport) {
		t.Fatalf("expected invalid import, got %v", err)
	}
}

func TestBankExportRoundTripsThroughImport(t *testing.T) {
	ctx := context.Background()
	source := app.NewBankService(memory.NewQuestionBank(testQuestions()...))

	data, err := source.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	target := memory.NewQuestionBank()
	if _, err := app.NewBankService(target).Import(ctx, data); err != nil {
		t.Fatalf("import exported data: %v", err)
	}
	imported, _ := target.List(ctx)
	if len(imported) != len(testQuestions()) {
		t.Fatalf("expected %d questions after round trip, got %d", len(testQuestions()), len(imported))
	}
}
