package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizmaster/internal/domain"
)

// QuestionLoader fetches a question pool from a backing store (question
// bank, Postgres, etc).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, category, title string) ([]domain.Question, error)
}

// QuestionRepository caches category+title pools in Redis as JSON arrays
// and falls back to a loader on cache miss.
// Pools are stored as: SET quiz:pool:{category}::{title} {json} EX {ttl}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, category, title string) ([]domain.Question, error) {
	key := r.poolKey(category, title)

	if raw, err := r.client.Get(ctx, key).Result(); err == nil {
		var pool []domain.Question
		if err := json.Unmarshal([]byte(raw), &pool); err == nil {
			return pool, nil
		}
		// fall through to reload on a corrupt cache entry
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Result(); err == nil {
			var pool []domain.Question
			if err := json.Unmarshal([]byte(raw), &pool); err == nil {
				return pool, nil
			}
		}

		pool, err := r.loader.LoadQuestions(ctx, category, title)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(pool); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) poolKey(category, title string) string {
	return "quiz:pool:" + category + "::" + title
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
