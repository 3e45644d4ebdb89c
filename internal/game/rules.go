// Package game implements the treasure chest game: round generation, the
// reveal step, outcome resolution and the per-chat session state machine.
package game

import "time"

const (
	// DefaultInitialScore is the score a new game starts with.
	DefaultInitialScore = 100

	// DefaultTreasureReward is added when the treasure chest is opened.
	DefaultTreasureReward = 100

	// DefaultTrapPenalty is subtracted when a trap chest is opened.
	DefaultTrapPenalty = 50

	// DefaultEmptyPenalty is subtracted when an empty chest is opened.
	DefaultEmptyPenalty = 10

	// DefaultHintCost is the price of one hint.
	DefaultHintCost = 20

	// DefaultMaxRounds is the number of rounds in a game.
	DefaultMaxRounds = 5

	// DefaultMaxChests caps the grid size.
	DefaultMaxChests = 9

	// DefaultRevealDelay is the pause before every chest is opened after a decision.
	DefaultRevealDelay = 1500 * time.Millisecond

	// DefaultAdvisoryTimeout bounds a single advisory text request.
	DefaultAdvisoryTimeout = 8 * time.Second
)

// Rules holds the tunable constants of a game.
type Rules struct {
	InitialScore    int
	TreasureReward  int
	TrapPenalty     int
	EmptyPenalty    int
	HintCost        int
	MaxRounds       int
	MaxChests       int
	RevealDelay     time.Duration
	AdvisoryTimeout time.Duration
}

// DefaultRules returns the standard game rules.
func DefaultRules() Rules {
	return Rules{
		InitialScore:    DefaultInitialScore,
		TreasureReward:  DefaultTreasureReward,
		TrapPenalty:     DefaultTrapPenalty,
		EmptyPenalty:    DefaultEmptyPenalty,
		HintCost:        DefaultHintCost,
		MaxRounds:       DefaultMaxRounds,
		MaxChests:       DefaultMaxChests,
		RevealDelay:     DefaultRevealDelay,
		AdvisoryTimeout: DefaultAdvisoryTimeout,
	}
}

// WithDefaults fills zero fields with the default values.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.InitialScore <= 0 {
		r.InitialScore = d.InitialScore
	}
	if r.TreasureReward <= 0 {
		r.TreasureReward = d.TreasureReward
	}
	if r.TrapPenalty <= 0 {
		r.TrapPenalty = d.TrapPenalty
	}
	if r.EmptyPenalty <= 0 {
		r.EmptyPenalty = d.EmptyPenalty
	}
	if r.HintCost <= 0 {
		r.HintCost = d.HintCost
	}
	if r.MaxRounds <= 0 {
		r.MaxRounds = d.MaxRounds
	}
	// Three chests is the smallest grid that leaves something to reveal.
	if r.MaxChests < 3 {
		r.MaxChests = d.MaxChests
	}
	if r.RevealDelay <= 0 {
		r.RevealDelay = d.RevealDelay
	}
	if r.AdvisoryTimeout <= 0 {
		r.AdvisoryTimeout = d.AdvisoryTimeout
	}
	return r
}
