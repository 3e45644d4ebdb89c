package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"treasure-chest-bot/internal/model"
)

// identitySource always returns the largest value, which makes shuffle a no-op.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

// rapidSource draws every random value from rapid so failures shrink.
type rapidSource struct{ t *rapid.T }

func (s rapidSource) Intn(n int) int {
	return rapid.IntRange(0, n-1).Draw(s.t, "intn")
}

func countTypes(chests []model.Chest) map[model.ChestType]int {
	counts := make(map[model.ChestType]int)
	for _, c := range chests {
		counts[c.Type]++
	}
	return counts
}

func TestRoundShape(t *testing.T) {
	tests := []struct {
		round   int
		chests  int
		traps   int
		empties int
	}{
		{1, 3, 1, 1},
		{2, 3, 1, 1},
		{3, 4, 2, 1},
		{4, 4, 2, 1},
		{5, 5, 3, 1},
		{6, 5, 4, 0},
		{9, 7, 6, 0},
		{15, 9, 8, 0},
	}

	for _, tt := range tests {
		n := ChestCount(tt.round, DefaultMaxChests)
		traps := TrapCount(tt.round, n)
		assert.Equal(t, tt.chests, n, "chests in round %d", tt.round)
		assert.Equal(t, tt.traps, traps, "traps in round %d", tt.round)
		assert.Equal(t, tt.empties, n-1-traps, "empties in round %d", tt.round)
	}
}

func TestChestCount_ClampsToMax(t *testing.T) {
	assert.Equal(t, 9, ChestCount(100, 9))
	assert.Equal(t, 3, ChestCount(0, 9))
	assert.Equal(t, 4, ChestCount(10, 4))
}

func TestGenerateChests_IdentityOrder(t *testing.T) {
	chests := GenerateChests(1, DefaultRules(), identitySource{})

	require.Len(t, chests, 3)
	assert.Equal(t, model.Chest{ID: 1, Type: model.ChestTreasure, Status: model.StatusClosed}, chests[0])
	assert.Equal(t, model.Chest{ID: 2, Type: model.ChestTrap, Status: model.StatusClosed}, chests[1])
	assert.Equal(t, model.Chest{ID: 3, Type: model.ChestEmpty, Status: model.StatusClosed}, chests[2])
}

func TestGenerateChests_TreasurePositionIsUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	positions := make([]int, 3)
	const runs = 3000

	for i := 0; i < runs; i++ {
		for j, c := range GenerateChests(1, DefaultRules(), rng) {
			if c.Type == model.ChestTreasure {
				positions[j]++
			}
		}
	}

	for i, n := range positions {
		assert.InDelta(t, runs/3, n, 200, "treasure at position %d", i)
	}
}

// TestGenerateChestsProperty checks the shape of a generated round for any
// round number, grid cap and shuffle.
func TestGenerateChestsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		round := rapid.IntRange(1, 30).Draw(t, "round")
		rules := DefaultRules()
		rules.MaxChests = rapid.IntRange(3, 12).Draw(t, "maxChests")

		chests := GenerateChests(round, rules, rapidSource{t})

		n := ChestCount(round, rules.MaxChests)
		if len(chests) != n {
			t.Fatalf("expected %d chests, got %d", n, len(chests))
		}

		counts := countTypes(chests)
		if counts[model.ChestTreasure] != 1 {
			t.Fatalf("expected exactly one treasure, got %d", counts[model.ChestTreasure])
		}
		if counts[model.ChestTrap] != TrapCount(round, n) {
			t.Fatalf("expected %d traps, got %d", TrapCount(round, n), counts[model.ChestTrap])
		}
		if counts[model.ChestEmpty] < 0 || counts[model.ChestTrap] < 1 {
			t.Fatalf("invalid type counts: %v", counts)
		}

		for i, c := range chests {
			if c.ID != i+1 {
				t.Fatalf("chest %d has id %d", i, c.ID)
			}
			if c.Status != model.StatusClosed {
				t.Fatalf("chest %d starts %s", c.ID, c.Status)
			}
		}
	})
}

func TestSample_Distinct(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "n")
		k := rapid.IntRange(0, n+2).Draw(t, "k")

		picked := sample(rapidSource{t}, n, k)

		if len(picked) != min(k, n) {
			t.Fatalf("expected %d picks, got %d", min(k, n), len(picked))
		}
		seen := make(map[int]bool)
		for _, p := range picked {
			if p < 0 || p >= n || seen[p] {
				t.Fatalf("bad sample %v for n=%d", picked, n)
			}
			seen[p] = true
		}
	})
}
