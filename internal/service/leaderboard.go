// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"treasure-chest-bot/internal/model"
)

const (
	// DefaultLeaderboardLimit is how many entries are kept.
	DefaultLeaderboardLimit = 50

	// DefaultNameMaxLen is the longest accepted player name, in characters.
	DefaultNameMaxLen = 12

	// DefaultDateFormat formats the entry date.
	DefaultDateFormat = "2006-01-02"
)

// Leaderboard errors
var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name is too long")
	ErrNotLoaded   = errors.New("stored leaderboard has not been loaded")
)

// LeaderboardStorage persists the whole leaderboard collection.
type LeaderboardStorage interface {
	Load(ctx context.Context) ([]model.LeaderboardEntry, error)
	Save(ctx context.Context, entries []model.LeaderboardEntry) error
}

// LeaderboardOptions tunes a LeaderboardService. Zero values use defaults.
type LeaderboardOptions struct {
	Limit      int
	NameMaxLen int
	DateFormat string
	Timezone   *time.Location
}

// LeaderboardService keeps the top scores sorted and persisted.
// The collection is loaded once and then served from memory; every append
// writes the full collection back to storage. Until a load succeeds nothing
// is written, so a failed read can never overwrite the stored scores.
type LeaderboardService struct {
	storage    LeaderboardStorage
	limit      int
	nameMaxLen int
	dateFormat string
	timezone   *time.Location
	now        func() time.Time
	newID      func() string

	mu      sync.Mutex
	entries []model.LeaderboardEntry
	loaded  bool
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(storage LeaderboardStorage, opts LeaderboardOptions) *LeaderboardService {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLeaderboardLimit
	}
	if opts.NameMaxLen <= 0 {
		opts.NameMaxLen = DefaultNameMaxLen
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	return &LeaderboardService{
		storage:    storage,
		limit:      opts.Limit,
		nameMaxLen: opts.NameMaxLen,
		dateFormat: opts.DateFormat,
		timezone:   opts.Timezone,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Init loads the stored leaderboard. A missing or unreadable collection
// yields an empty leaderboard; an unreadable one is retried on the next call.
func (s *LeaderboardService) Init(ctx context.Context) []model.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(ctx)
	return s.copyLocked(len(s.entries))
}

// Top returns at most n entries, highest score first.
func (s *LeaderboardService) Top(ctx context.Context, n int) []model.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.loadLocked(ctx)
	return s.copyLocked(n)
}

// Append inserts entry, keeps the collection sorted and truncated, and
// persists it. The in-memory leaderboard is updated even if persisting fails;
// the storage error is returned. If the stored collection cannot be read the
// entry is held in memory, merged on the next successful load, and
// ErrNotLoaded is returned.
func (s *LeaderboardService) Append(ctx context.Context, entry model.LeaderboardEntry) ([]model.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loadErr := s.loadLocked(ctx)

	s.entries = InsertEntry(s.entries, entry, s.limit)
	snapshot := s.copyLocked(len(s.entries))

	if loadErr != nil {
		return snapshot, fmt.Errorf("%w: %v", ErrNotLoaded, loadErr)
	}

	if err := s.storage.Save(ctx, snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to persist leaderboard: %w", err)
	}
	return snapshot, nil
}

// Record validates name and appends a new entry for score.
// Persistence is best-effort: a storage failure is logged, not returned.
func (s *LeaderboardService) Record(ctx context.Context, name string, score int64) (*model.LeaderboardEntry, error) {
	clean, err := ValidateName(name, s.nameMaxLen)
	if err != nil {
		return nil, err
	}

	entry := model.LeaderboardEntry{
		ID:    s.newID(),
		Name:  clean,
		Score: score,
		Date:  s.now().In(s.timezone).Format(s.dateFormat),
	}

	if _, err := s.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("entry_id", entry.ID).Msg("Leaderboard save failed")
	} else {
		log.Info().
			Str("entry_id", entry.ID).
			Str("name", entry.Name).
			Int64("score", entry.Score).
			Msg("Leaderboard entry saved")
	}
	return &entry, nil
}

// ValidateName trims name and checks it is non-empty and at most maxLen characters.
func ValidateName(name string, maxLen int) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(clean) > maxLen {
		return "", fmt.Errorf("%w: max %d characters", ErrNameTooLong, maxLen)
	}
	return clean, nil
}

// InsertEntry returns a new collection with entry added, sorted by score
// descending and truncated to limit. Equal scores keep their earlier order,
// so a new entry ranks below existing ones with the same score.
func InsertEntry(entries []model.LeaderboardEntry, entry model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, entry)
	return normalize(out, limit)
}

// normalize sorts by score descending and truncates to limit.
func normalize(entries []model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// loadLocked reads storage until it succeeds once. Malformed rows are
// dropped; entries recorded while storage was unreadable are merged in.
func (s *LeaderboardService) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	stored, err := s.storage.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Int("pending", len(s.entries)).Msg("Failed to load leaderboard, will retry")
		return err
	}
	s.loaded = true

	valid := make([]model.LeaderboardEntry, 0, len(stored))
	for _, e := range stored {
		if e.ID == "" || strings.TrimSpace(e.Name) == "" {
			continue
		}
		valid = append(valid, e)
	}
	pending := len(s.entries)
	s.entries = normalize(mergeEntries(valid, s.entries), s.limit)

	log.Info().Int("entries", len(s.entries)).Int("pending", pending).Msg("Leaderboard loaded")

	if pending > 0 {
		if err := s.storage.Save(ctx, s.copyLocked(len(s.entries))); err != nil {
			log.Error().Err(err).Msg("Failed to persist pending leaderboard entries")
		}
	}
	return nil
}

// mergeEntries appends the local entries missing from stored. Stored entries
// come first, so they keep precedence on equal scores.
func mergeEntries(stored, local []model.LeaderboardEntry) []model.LeaderboardEntry {
	seen := make(map[string]bool, len(stored))
	for _, e := range stored {
		seen[e.ID] = true
	}
	out := append(make([]model.LeaderboardEntry, 0, len(stored)+len(local)), stored...)
	for _, e := range local {
		if !seen[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func (s *LeaderboardService) copyLocked(n int) []model.LeaderboardEntry {
	if n > len(s.entries) {
		n = len(s.entries)
	}
	if n < 0 {
		n = 0
	}
	return append(make([]model.LeaderboardEntry, 0, n), s.entries[:n]...)
}
