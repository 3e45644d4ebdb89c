package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"treasure-chest-bot/internal/advisory"
	"treasure-chest-bot/internal/model"
)

// Errors for saving a score.
var (
	ErrNotGameOver  = errors.New("score can only be saved when the game is over")
	ErrAlreadySaved = errors.New("score already saved for this game")
	ErrNoRecorder   = errors.New("leaderboard is not available")
)

// ScoreRecorder stores a final score on the leaderboard.
type ScoreRecorder interface {
	Record(ctx context.Context, name string, score int64) (*model.LeaderboardEntry, error)
}

// Snapshot is a read-only copy of a session for rendering.
// Seq grows with every state change, so a larger Seq is always newer.
type Snapshot struct {
	ID      int64
	Game    uint64
	Seq     uint64
	State   model.RoundState
	Message string
	Saved   bool
}

// Option configures a Session.
type Option func(*Session)

// WithSource sets the random source used for shuffling and reveals.
func WithSource(rng Source) Option {
	return func(s *Session) { s.rng = rng }
}

// WithAdvisor sets the advisory text provider.
func WithAdvisor(p advisory.Provider) Option {
	return func(s *Session) { s.advisor = p }
}

// WithRecorder sets where final scores are saved.
func WithRecorder(r ScoreRecorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithAfterFunc replaces time.AfterFunc for the deferred full reveal.
func WithAfterFunc(after func(time.Duration, func())) Option {
	return func(s *Session) { s.after = after }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithNotify registers a callback for changes that happen in the background
// (advisory text arriving, deferred full reveal). It is called without the
// session lock held.
func WithNotify(fn func(Snapshot)) Option {
	return func(s *Session) { s.notify = fn }
}

// Session is one player's game. All state changes go through its methods,
// which are safe for concurrent use. Intents that are not valid in the
// current state are refused and return false.
type Session struct {
	id       int64
	rules    Rules
	rng      Source
	advisor  advisory.Provider
	recorder ScoreRecorder
	after    func(time.Duration, func())
	notify   func(Snapshot)
	now      func() time.Time

	mu      sync.Mutex
	state   model.RoundState
	message string
	game    uint64
	seq     uint64
	active  time.Time
	saved   bool

	wg sync.WaitGroup
}

// NewSession creates a session sitting at the title screen.
func NewSession(id int64, rules Rules, opts ...Option) *Session {
	s := &Session{
		id:    id,
		rules: rules.WithDefaults(),
		state: model.RoundState{Phase: model.PhaseStart},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewSource()
	}
	if s.advisor == nil {
		s.advisor = advisory.NewProvider(nil)
	}
	if s.after == nil {
		s.after = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.active = s.now()
	return s
}

// ID returns the session id.
func (s *Session) ID() int64 {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastActive returns when the session last changed.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Wait blocks until all background advisory requests have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// StartGame leaves the title screen and starts round 1.
func (s *Session) StartGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseStart {
		return false
	}
	s.newGameLocked()
	return true
}

// Restart starts a fresh game straight from the game over screen.
func (s *Session) Restart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseGameOver {
		return false
	}
	s.newGameLocked()
	return true
}

// ReturnToTitle goes back to the title screen from the game over screen.
func (s *Session) ReturnToTitle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseGameOver {
		return false
	}
	s.game++
	s.state = model.RoundState{Phase: model.PhaseStart}
	s.message = ""
	s.saved = false
	s.touchLocked()
	return true
}

// Select picks a closed chest. During the decision phase this is how the
// player switches.
func (s *Session) Select(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseSelection && s.state.Phase != model.PhaseDecision {
		return false
	}
	chest, ok := s.state.Chest(id)
	if !ok || chest.Status != model.StatusClosed {
		return false
	}
	s.state.SelectedChestID = id
	s.touchLocked()
	return true
}

// Confirm locks in the tentative pick and reveals some losing chests.
func (s *Session) Confirm() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseSelection || s.state.SelectedChestID == 0 {
		return false
	}

	chests, revealed := RevealChests(s.state.Chests, s.state.SelectedChestID, s.rng)
	s.state.Chests = chests
	s.state.Phase = model.PhaseDecision
	s.message = fmt.Sprintf("The host opened %d chest(s). Stick with chest %d or switch?",
		len(revealed), s.state.SelectedChestID)
	s.touchLocked()

	req := advisory.FlavorRequest{Stage: model.PhaseReveal, Round: s.state.Round}
	s.dispatchLocked(func(ctx context.Context) string {
		return s.advisor.Flavor(ctx, req)
	})
	return true
}

// Decide opens the selected chest and settles the round.
func (s *Session) Decide() bool {
	s.mu.Lock()
	if s.state.Phase != model.PhaseDecision || s.state.SelectedChestID == 0 {
		s.mu.Unlock()
		return false
	}
	chest, ok := s.state.Chest(s.state.SelectedChestID)
	if !ok {
		s.mu.Unlock()
		return false
	}

	outcome, change := Resolve(chest, s.rules)
	s.state.Score = ApplyScore(s.state.Score, change)
	s.state.History = append(s.state.History, model.RoundResult{
		Round:       s.state.Round,
		Outcome:     outcome,
		ScoreChange: change,
	})
	s.state.Chests = openChest(s.state.Chests, chest.ID)
	s.state.Phase = model.PhaseResult
	s.message = resultMessage(outcome, change)
	s.touchLocked()

	log.Info().
		Int64("session_id", s.id).
		Int("round", s.state.Round).
		Str("outcome", string(outcome)).
		Int("score_change", change).
		Int("score", s.state.Score).
		Msg("Round settled")

	req := advisory.FlavorRequest{Stage: model.PhaseResult, Round: s.state.Round, Outcome: outcome}
	s.dispatchLocked(func(ctx context.Context) string {
		return s.advisor.Flavor(ctx, req)
	})

	tag := s.tagLocked()
	s.mu.Unlock()

	s.after(s.rules.RevealDelay, func() { s.finishReveal(tag) })
	return true
}

// BuyHint spends score on a hint about the current pick.
func (s *Session) BuyHint() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseDecision || s.state.SelectedChestID == 0 {
		return false
	}
	if s.state.Score < s.rules.HintCost {
		return false
	}

	s.state.Score -= s.rules.HintCost
	s.state.HintsUsed++
	s.message = "The oracle ponders your choice..."
	s.touchLocked()

	chests := append([]model.Chest(nil), s.state.Chests...)
	selected := s.state.SelectedChestID
	s.dispatchLocked(func(ctx context.Context) string {
		return s.advisor.Hint(ctx, chests, selected)
	})
	return true
}

// NextRound moves on after a result. The last round, or a score of zero,
// ends the game instead.
func (s *Session) NextRound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase != model.PhaseResult {
		return false
	}
	if s.state.Round >= s.rules.MaxRounds || s.state.Score == 0 {
		s.gameOverLocked()
	} else {
		s.startRoundLocked(s.state.Round + 1)
	}
	s.touchLocked()
	return true
}

// SaveScore records the final score under name. Only one save per game
// over is accepted; a rejected name can be retried.
func (s *Session) SaveScore(ctx context.Context, name string) (*model.LeaderboardEntry, error) {
	s.mu.Lock()
	if s.state.Phase != model.PhaseGameOver {
		s.mu.Unlock()
		return nil, ErrNotGameOver
	}
	if s.saved {
		s.mu.Unlock()
		return nil, ErrAlreadySaved
	}
	if s.recorder == nil {
		s.mu.Unlock()
		return nil, ErrNoRecorder
	}
	s.saved = true
	s.touchLocked()
	game := s.game
	score := int64(s.state.Score)
	s.mu.Unlock()

	entry, err := s.recorder.Record(ctx, name, score)
	if err != nil {
		s.mu.Lock()
		if s.game == game {
			s.saved = false
			s.touchLocked()
		}
		s.mu.Unlock()
		return nil, err
	}
	return entry, nil
}

// applyAdvisory sets the message if tag is still live.
func (s *Session) applyAdvisory(tag Tag, text string) bool {
	s.mu.Lock()
	if !tag.Matches(s.tagLocked()) {
		s.mu.Unlock()
		log.Debug().
			Int64("session_id", s.id).
			Int("round", tag.Round).
			Str("phase", string(tag.Phase)).
			Msg("Dropped stale advisory text")
		return false
	}
	s.message = text
	s.touchLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(snap)
	return true
}

// finishReveal opens every chest once the dramatic pause is over and ends
// the game if the score hit zero. It does nothing if the round moved on.
func (s *Session) finishReveal(tag Tag) bool {
	s.mu.Lock()
	if !tag.SameRound(s.tagLocked()) {
		s.mu.Unlock()
		log.Debug().
			Int64("session_id", s.id).
			Int("round", tag.Round).
			Msg("Dropped stale full reveal")
		return false
	}
	s.state.Chests = openAll(s.state.Chests)
	if s.state.Score == 0 && s.state.Phase == model.PhaseResult {
		s.gameOverLocked()
	}
	s.touchLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emit(snap)
	return true
}

func (s *Session) newGameLocked() {
	s.game++
	s.saved = false
	s.state = model.RoundState{
		Score: s.rules.InitialScore,
	}
	log.Info().Int64("session_id", s.id).Uint64("game", s.game).Msg("Game started")
	s.startRoundLocked(1)
	s.touchLocked()
}

func (s *Session) startRoundLocked(round int) {
	s.state.Chests = GenerateChests(round, s.rules, s.rng)
	s.state.SelectedChestID = 0
	s.state.HintsUsed = 0
	s.state.Phase = model.PhaseSelection
	s.state.Round = round
	s.message = fmt.Sprintf("Round %d of %d: pick a chest.", round, s.rules.MaxRounds)

	req := advisory.FlavorRequest{Stage: model.PhaseSelection, Round: round}
	s.dispatchLocked(func(ctx context.Context) string {
		return s.advisor.Flavor(ctx, req)
	})
}

func (s *Session) gameOverLocked() {
	s.state.Phase = model.PhaseGameOver
	s.message = fmt.Sprintf("Game over! Final score: %d.", s.state.Score)
	log.Info().
		Int64("session_id", s.id).
		Uint64("game", s.game).
		Int("round", s.state.Round).
		Int("score", s.state.Score).
		Msg("Game over")
}

// dispatchLocked runs fetch in the background and applies its text only if
// the tag captured now is still live when it returns.
func (s *Session) dispatchLocked(fetch func(ctx context.Context) string) {
	tag := s.tagLocked()
	timeout := s.rules.AdvisoryTimeout
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.applyAdvisory(tag, fetch(ctx))
	}()
}

// touchLocked records a state change.
func (s *Session) touchLocked() {
	s.seq++
	s.active = s.now()
}

func (s *Session) tagLocked() Tag {
	return Tag{Game: s.game, Round: s.state.Round, Phase: s.state.Phase}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:      s.id,
		Game:    s.game,
		Seq:     s.seq,
		State:   s.state.Clone(),
		Message: s.message,
		Saved:   s.saved,
	}
}

func (s *Session) emit(snap Snapshot) {
	if s.notify != nil {
		s.notify(snap)
	}
}

func resultMessage(outcome model.Outcome, change int) string {
	switch outcome {
	case model.OutcomeWin:
		return fmt.Sprintf("Treasure! %+d points.", change)
	case model.OutcomeLoss:
		return fmt.Sprintf("A trap! %+d points.", change)
	default:
		return fmt.Sprintf("Empty. %+d points.", change)
	}
}
