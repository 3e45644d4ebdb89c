package game

import "treasure-chest-bot/internal/model"

// Resolve classifies an opened chest and returns the outcome and score change.
func Resolve(chest model.Chest, rules Rules) (model.Outcome, int) {
	switch chest.Type {
	case model.ChestTreasure:
		return model.OutcomeWin, rules.TreasureReward
	case model.ChestTrap:
		return model.OutcomeLoss, -rules.TrapPenalty
	default:
		return model.OutcomeEmpty, -rules.EmptyPenalty
	}
}

// ApplyScore adds change to score. The result is never below zero.
func ApplyScore(score, change int) int {
	return max(0, score+change)
}

// openChest returns a copy of chests with the given chest opened.
func openChest(chests []model.Chest, id int) []model.Chest {
	out := append([]model.Chest(nil), chests...)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = model.StatusOpened
		}
	}
	return out
}

// openAll returns a copy of chests with every chest opened.
func openAll(chests []model.Chest) []model.Chest {
	out := append([]model.Chest(nil), chests...)
	for i := range out {
		out[i].Status = model.StatusOpened
	}
	return out
}
