package game

import "treasure-chest-bot/internal/model"

// ChestCount returns the number of chests in a round.
// N = min(maxChests, 3 + floor((round-1)/2)).
func ChestCount(round, maxChests int) int {
	if round < 1 {
		round = 1
	}
	return min(maxChests, 3+(round-1)/2)
}

// TrapCount returns the number of traps for a round with the given chest count.
// T = max(1, floor(round/1.5)), clamped to chests-1 so the empty count never
// goes negative on long games.
func TrapCount(round, chests int) int {
	// floor(round/1.5) == floor(2*round/3) for integers.
	traps := max(1, 2*round/3)
	return min(traps, chests-1)
}

// GenerateChests builds a shuffled chest set for the given round.
// There is always exactly one treasure and every chest starts closed.
func GenerateChests(round int, rules Rules, rng Source) []model.Chest {
	n := ChestCount(round, rules.MaxChests)
	traps := TrapCount(round, n)

	types := make([]model.ChestType, 0, n)
	types = append(types, model.ChestTreasure)
	for i := 0; i < traps; i++ {
		types = append(types, model.ChestTrap)
	}
	for len(types) < n {
		types = append(types, model.ChestEmpty)
	}

	shuffle(rng, len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})

	chests := make([]model.Chest, n)
	for i, t := range types {
		chests[i] = model.Chest{
			ID:     i + 1,
			Type:   t,
			Status: model.StatusClosed,
		}
	}
	return chests
}
