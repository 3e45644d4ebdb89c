package advisory

import "treasure-chest-bot/internal/model"

var selectionPhrases = []string{
	"The chests sit in silence. One of them hums with gold.",
	"Dust settles on the lids. Choose wisely, seeker.",
	"Somewhere in this row a fortune waits. Somewhere else, teeth.",
	"The old host grins and gestures at the chests.",
}

var revealPhrases = []string{
	"The host throws back a few lids. Nothing worth having inside.",
	"Some secrets are spilled. Will you trust your first instinct?",
	"Fewer chests, same question. Stick or switch?",
	"The host smiles. He knows where the gold is. Do you?",
}

var winPhrases = []string{
	"Gold spills over the rim! Fortune favors you this round.",
	"The lid creaks open on a glittering hoard.",
	"Treasure! The host looks almost disappointed.",
}

var lossPhrases = []string{
	"Snap! The trap bites and your purse grows lighter.",
	"A cloud of soot and a sprung jaw. Not your round.",
	"The chest was hungry, and you fed it.",
}

var emptyPhrases = []string{
	"Nothing but cobwebs and a faint smell of regret.",
	"Empty. The echo mocks you gently.",
	"A bare wooden floor stares back at you.",
}

var warmHints = []string{
	"Your hand rests near something warm.",
	"The oracle nods slowly. Loyalty may be rewarded.",
	"A faint glimmer escapes the lid you chose.",
}

var coldHints = []string{
	"A chill runs through the chest you favor.",
	"The oracle frowns. Fortune rarely stays where it is first sought.",
	"Something under your lid is not gold.",
}

func flavorBank(req FlavorRequest) []string {
	switch req.Stage {
	case model.PhaseReveal, model.PhaseDecision:
		return revealPhrases
	case model.PhaseResult:
		switch req.Outcome {
		case model.OutcomeWin:
			return winPhrases
		case model.OutcomeLoss:
			return lossPhrases
		default:
			return emptyPhrases
		}
	default:
		return selectionPhrases
	}
}

func hintBank(chests []model.Chest, selectedID int) []string {
	for _, c := range chests {
		if c.ID == selectedID && c.Type == model.ChestTreasure {
			return warmHints
		}
	}
	return coldHints
}
