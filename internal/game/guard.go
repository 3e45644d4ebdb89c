package game

import "treasure-chest-bot/internal/model"

// Tag identifies the moment a background request was issued for.
// Game is a per-session counter bumped on every new game, so two games that
// both sit in round 1 never share a tag.
type Tag struct {
	Game  uint64
	Round int
	Phase model.Phase
}

// Matches reports whether a result issued under t may still be applied while
// live is the current tag. Only an exact match counts.
func (t Tag) Matches(live Tag) bool {
	return t == live
}

// SameRound is the phase-agnostic variant used by the deferred full reveal.
func (t Tag) SameRound(live Tag) bool {
	return t.Game == live.Game && t.Round == live.Round
}
