package memory

import (
	"context"
	"sync"

	"quizmaster/internal/domain"
)

// HistoryStore keeps per-user completion records in memory, append-only and
// in insertion order.
type HistoryStore struct {
	mu      sync.RWMutex
	entries map[string][]domain.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[string][]domain.HistoryEntry)}
}

func (h *HistoryStore) Append(_ context.Context, username string, entry domain.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[username] = append(h.entries[username], entry)
	return nil
}

// List returns the user's completion records, oldest first.
func (h *HistoryStore) List(_ context.Context, username string) ([]domain.HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stored := h.entries[username]
	out := make([]domain.HistoryEntry, len(stored))
	copy(out, stored)
	return out, nil
}
