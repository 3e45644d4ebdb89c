package game

import "treasure-chest-bot/internal/model"

// RevealChests marks roughly half of the closed, non-selected, non-treasure
// chests as revealed. At least one chest is revealed when any candidate exists.
// The input slice is not modified; the new chest set and the revealed ids are
// returned.
func RevealChests(chests []model.Chest, selectedID int, rng Source) ([]model.Chest, []int) {
	out := append([]model.Chest(nil), chests...)

	var candidates []int
	for i, c := range out {
		if c.Status != model.StatusClosed || c.ID == selectedID || c.Type == model.ChestTreasure {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return out, nil
	}

	k := max(1, len(candidates)/2)
	revealed := make([]int, 0, k)
	for _, pick := range sample(rng, len(candidates), k) {
		i := candidates[pick]
		out[i].Status = model.StatusRevealed
		revealed = append(revealed, out[i].ID)
	}
	return out, revealed
}
