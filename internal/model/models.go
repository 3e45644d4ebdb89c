// Package model defines the data models for the treasure chest game.
package model

// ChestType is the hidden content of a chest. It never changes after creation.
type ChestType string

// Chest types.
const (
	ChestTreasure ChestType = "treasure"
	ChestTrap     ChestType = "trap"
	ChestEmpty    ChestType = "empty"
)

// ChestStatus is the visible state of a chest.
// Transitions are monotone: closed -> revealed -> opened, or closed -> opened.
type ChestStatus string

// Chest statuses.
const (
	StatusClosed   ChestStatus = "closed"
	StatusRevealed ChestStatus = "revealed"
	StatusOpened   ChestStatus = "opened"
)

// Chest is a single guessable unit within a round.
type Chest struct {
	ID     int         `json:"id"`
	Type   ChestType   `json:"type"`
	Status ChestStatus `json:"status"`
}

// Phase is the game phase of a session.
type Phase string

// Game phases.
const (
	PhaseStart     Phase = "start"
	PhaseSelection Phase = "selection"
	PhaseDecision  Phase = "decision"
	PhaseResult    Phase = "result"
	PhaseGameOver  Phase = "game_over"

	// PhaseReveal only tags advisory text requested while chests are revealed.
	// A session is never in this phase.
	PhaseReveal Phase = "reveal"
)

// Outcome is the classification of an opened chest.
type Outcome string

// Round outcomes.
const (
	OutcomeWin   Outcome = "win"
	OutcomeLoss  Outcome = "loss"
	OutcomeEmpty Outcome = "empty"
)

// RoundResult is an immutable record of one finished round.
type RoundResult struct {
	Round       int     `json:"round"`
	Outcome     Outcome `json:"outcome"`
	ScoreChange int     `json:"score_change"`
}

// RoundState is the full state of a running game.
// SelectedChestID is 0 when nothing is selected.
type RoundState struct {
	Chests          []Chest       `json:"chests"`
	SelectedChestID int           `json:"selected_chest_id"`
	Phase           Phase         `json:"phase"`
	Round           int           `json:"round"`
	Score           int           `json:"score"`
	HintsUsed       int           `json:"hints_used"`
	History         []RoundResult `json:"history"`
}

// Clone returns a deep copy of the state.
func (s RoundState) Clone() RoundState {
	out := s
	out.Chests = append([]Chest(nil), s.Chests...)
	out.History = append([]RoundResult(nil), s.History...)
	return out
}

// Chest returns the chest with the given id.
func (s RoundState) Chest(id int) (Chest, bool) {
	for _, c := range s.Chests {
		if c.ID == id {
			return c, true
		}
	}
	return Chest{}, false
}

// LeaderboardEntry is a saved final score.
type LeaderboardEntry struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Score int64  `json:"score" db:"score"`
	Date  string `json:"date" db:"date"`
}
