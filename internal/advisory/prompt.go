package advisory

import (
	"fmt"
	"strings"

	"treasure-chest-bot/internal/model"
)

const narratorPreamble = "You are the theatrical host of a treasure chest game show. " +
	"Answer with one or two short sentences, no more than 30 words, no emoji."

func flavorPrompt(req FlavorRequest) string {
	var moment string
	switch req.Stage {
	case model.PhaseReveal, model.PhaseDecision:
		moment = "You have just opened some chests that hold no treasure. Tease the player about sticking or switching."
	case model.PhaseResult:
		moment = fmt.Sprintf("The player opened their chest. The outcome was: %s. React to it.", req.Outcome)
	default:
		moment = "A new set of closed chests is presented. Set the mood and invite the player to pick one."
	}
	return fmt.Sprintf("%s\nRound %d. %s", narratorPreamble, req.Round, moment)
}

func hintPrompt(chests []model.Chest, selectedID int) string {
	var b strings.Builder
	b.WriteString(narratorPreamble)
	b.WriteString("\nThe player paid for a hint. Give a cryptic clue, never name a chest number directly.\n")
	for _, c := range chests {
		if c.Status == model.StatusRevealed {
			continue
		}
		marker := ""
		if c.ID == selectedID {
			marker = " (player's pick)"
		}
		fmt.Fprintf(&b, "Chest %d%s holds: %s\n", c.ID, marker, c.Type)
	}
	return b.String()
}
