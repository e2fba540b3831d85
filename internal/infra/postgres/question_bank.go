package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"quizmaster/internal/domain"
)

// QuestionBank is the writable question store over Postgres, used by the
// admin operations and the import/export CLI. The quiz read path goes
// through QuestionLoader (optionally behind the Redis cache).
type QuestionBank struct {
	db *bun.DB
}

func NewQuestionBank(db *bun.DB) *QuestionBank {
	return &QuestionBank{db: db}
}

func (b *QuestionBank) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT data FROM questions ORDER BY category, title, id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw sql.RawBytes
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (b *QuestionBank) Upsert(ctx context.Context, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO questions (id, category, title, data) VALUES (?, ?, ?, ?::jsonb)
		 ON CONFLICT (id) DO UPDATE SET category=EXCLUDED.category, title=EXCLUDED.title, data=EXCLUDED.data`,
		q.ID, q.Category, q.Title, string(data))
	if err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

func (b *QuestionBank) Delete(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM questions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
