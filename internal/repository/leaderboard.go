// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treasure-chest-bot/internal/model"
)

// LeaderboardSchema creates the leaderboard table.
// Rows are grouped by storage key; position keeps the stored order.
const LeaderboardSchema = `
	CREATE TABLE IF NOT EXISTS leaderboard_entries (
		storage_key VARCHAR(64) NOT NULL,
		id TEXT NOT NULL,
		position INT NOT NULL,
		name TEXT NOT NULL,
		score BIGINT NOT NULL,
		entry_date TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (storage_key, id)
	);
	CREATE INDEX IF NOT EXISTS idx_leaderboard_key_position ON leaderboard_entries(storage_key, position);
`

// LeaderboardRepository persists a leaderboard collection in PostgreSQL.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewLeaderboardRepository creates a repository for the collection stored under key.
func NewLeaderboardRepository(pool *pgxpool.Pool, key string) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool, key: key}
}

// Load returns the stored collection in stored order.
// An absent collection is returned as an empty slice.
func (r *LeaderboardRepository) Load(ctx context.Context) ([]model.LeaderboardEntry, error) {
	const query = `
		SELECT id, name, score, entry_date
		FROM leaderboard_entries
		WHERE storage_key = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// Save replaces the stored collection with entries in a single transaction.
func (r *LeaderboardRepository) Save(ctx context.Context, entries []model.LeaderboardEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM leaderboard_entries WHERE storage_key = $1`, r.key); err != nil {
		return fmt.Errorf("failed to clear leaderboard: %w", err)
	}

	const insert = `
		INSERT INTO leaderboard_entries (storage_key, id, position, name, score, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for i, e := range entries {
		batch.Queue(insert, r.key, e.ID, i, e.Name, e.Score, e.Date)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert leaderboard entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit leaderboard: %w", err)
	}
	return nil
}
