package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quizmaster/internal/domain"
)

// HistoryStore keeps per-user completion records as Redis lists, one JSON
// entry per completed session.
// Entries are stored as: RPUSH quiz:history:{username} {json}
type HistoryStore struct {
	client *redis.Client
}

func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func (h *HistoryStore) Append(ctx context.Context, username string, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	if err := h.client.RPush(ctx, h.key(username), data).Err(); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// List returns the user's completion records, oldest first.
func (h *HistoryStore) List(ctx context.Context, username string) ([]domain.HistoryEntry, error) {
	raw, err := h.client.LRange(ctx, h.key(username), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	entries := make([]domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("unmarshal history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (h *HistoryStore) key(username string) string {
	return "quiz:history:" + username
}
