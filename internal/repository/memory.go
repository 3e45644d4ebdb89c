package repository

import (
	"context"
	"sync"

	"treasure-chest-bot/internal/model"
)

// MemoryLeaderboardRepository keeps the leaderboard in process memory.
// It is used for local runs without a database and in tests.
type MemoryLeaderboardRepository struct {
	mu      sync.RWMutex
	entries []model.LeaderboardEntry
	saves   int
}

// NewMemoryLeaderboardRepository creates a repository seeded with entries.
func NewMemoryLeaderboardRepository(seed ...model.LeaderboardEntry) *MemoryLeaderboardRepository {
	return &MemoryLeaderboardRepository{
		entries: append([]model.LeaderboardEntry(nil), seed...),
	}
}

// Load returns a copy of the stored collection.
func (r *MemoryLeaderboardRepository) Load(ctx context.Context) ([]model.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append(make([]model.LeaderboardEntry, 0, len(r.entries)), r.entries...), nil
}

// Save replaces the stored collection.
func (r *MemoryLeaderboardRepository) Save(ctx context.Context, entries []model.LeaderboardEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]model.LeaderboardEntry(nil), entries...)
	r.saves++
	return nil
}

// Saves returns how many times Save was called.
func (r *MemoryLeaderboardRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}
