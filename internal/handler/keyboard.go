package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"treasure-chest-bot/internal/game"
	"treasure-chest-bot/internal/model"
)

// Callback data prefixes
const (
	CallbackSelect  = "chest_sel:"   // chest_sel:3
	CallbackConfirm = "chest_confirm"
	CallbackDecide  = "chest_decide"
	CallbackHint    = "chest_hint"
	CallbackNext    = "chest_next"
	CallbackPlay    = "chest_play"
	CallbackRestart = "chest_restart"
	CallbackTitle   = "chest_title"
	CallbackNoop    = "chest_noop"
)

// chestsPerRow is the grid width; the largest board is 3x3.
const chestsPerRow = 3

// ChestLabel returns the button text for a chest.
func ChestLabel(c model.Chest, selectedID int) string {
	switch c.Status {
	case model.StatusRevealed, model.StatusOpened:
		return fmt.Sprintf("%s %d", typeEmoji(c.Type), c.ID)
	}
	if c.ID == selectedID {
		return fmt.Sprintf("👉 %d", c.ID)
	}
	return fmt.Sprintf("📦 %d", c.ID)
}

func typeEmoji(t model.ChestType) string {
	switch t {
	case model.ChestTreasure:
		return "💰"
	case model.ChestTrap:
		return "🪤"
	default:
		return "🕸"
	}
}

// BuildBoardMarkup creates the inline keyboard for a session snapshot.
func BuildBoardMarkup(snap game.Snapshot, rules game.Rules) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	state := snap.State
	var rows []tele.Row

	switch state.Phase {
	case model.PhaseStart:
		rows = append(rows, markup.Row(markup.Data("▶️ Play", CallbackPlay)))

	case model.PhaseGameOver:
		rows = append(rows, chestRows(markup, state, false)...)
		rows = append(rows, markup.Row(
			markup.Data("🔁 Play again", CallbackRestart),
			markup.Data("🏠 Title", CallbackTitle),
		))

	default:
		selectable := state.Phase == model.PhaseSelection || state.Phase == model.PhaseDecision
		rows = append(rows, chestRows(markup, state, selectable)...)
		rows = append(rows, actionRows(markup, state, rules)...)
	}

	markup.Inline(rows...)
	return markup
}

func chestRows(markup *tele.ReplyMarkup, state model.RoundState, selectable bool) []tele.Row {
	var rows []tele.Row
	var current []tele.Btn
	for i, c := range state.Chests {
		data := CallbackNoop
		if selectable && c.Status == model.StatusClosed {
			data = CallbackSelect + strconv.Itoa(c.ID)
		}
		current = append(current, markup.Data(ChestLabel(c, state.SelectedChestID), data))

		if len(current) == chestsPerRow || i == len(state.Chests)-1 {
			rows = append(rows, markup.Row(current...))
			current = nil
		}
	}
	return rows
}

func actionRows(markup *tele.ReplyMarkup, state model.RoundState, rules game.Rules) []tele.Row {
	switch state.Phase {
	case model.PhaseSelection:
		if state.SelectedChestID == 0 {
			return nil
		}
		return []tele.Row{markup.Row(
			markup.Data(fmt.Sprintf("✅ Confirm chest %d", state.SelectedChestID), CallbackConfirm),
		)}

	case model.PhaseDecision:
		btns := []tele.Btn{
			markup.Data(fmt.Sprintf("🔓 Open chest %d", state.SelectedChestID), CallbackDecide),
		}
		if state.Score >= rules.HintCost {
			btns = append(btns, markup.Data(fmt.Sprintf("🔮 Hint (-%d)", rules.HintCost), CallbackHint))
		}
		return []tele.Row{markup.Row(btns...)}

	case model.PhaseResult:
		label := "➡️ Next round"
		if state.Round >= rules.MaxRounds || state.Score == 0 {
			label = "🏁 Finish"
		}
		return []tele.Row{markup.Row(markup.Data(label, CallbackNext))}
	}
	return nil
}

// RenderBoard returns the message text for a session snapshot.
func RenderBoard(snap game.Snapshot, rules game.Rules) string {
	state := snap.State
	var b strings.Builder

	if state.Phase == model.PhaseStart {
		b.WriteString("🏴‍☠️ Treasure Chests\n")
		b.WriteString("━━━━━━━━━━━━━━━\n")
		b.WriteString(RulesText(rules))
		return b.String()
	}

	fmt.Fprintf(&b, "🏴‍☠️ Round %d/%d\n", state.Round, rules.MaxRounds)
	fmt.Fprintf(&b, "💰 Score: %d", state.Score)
	if state.HintsUsed > 0 {
		fmt.Fprintf(&b, "   🔮 Hints: %d", state.HintsUsed)
	}
	b.WriteString("\n━━━━━━━━━━━━━━━\n")

	if snap.Message != "" {
		b.WriteString(snap.Message)
		b.WriteString("\n")
	}

	if state.Phase == model.PhaseGameOver {
		b.WriteString("\n")
		b.WriteString(RenderHistory(state.History))
		if !snap.Saved {
			b.WriteString("\nSend /save <name> to record your score.")
		}
	}
	return b.String()
}

// RenderHistory lists finished rounds.
func RenderHistory(history []model.RoundResult) string {
	if len(history) == 0 {
		return "No rounds played.\n"
	}
	var b strings.Builder
	for _, r := range history {
		fmt.Fprintf(&b, "Round %d: %s %+d\n", r.Round, outcomeEmoji(r.Outcome), r.ScoreChange)
	}
	return b.String()
}

func outcomeEmoji(o model.Outcome) string {
	switch o {
	case model.OutcomeWin:
		return "💰"
	case model.OutcomeLoss:
		return "🪤"
	default:
		return "🕸"
	}
}

// RulesText explains the game.
func RulesText(rules game.Rules) string {
	return fmt.Sprintf(
		"Pick a chest. The host then opens some chests that hold no treasure.\n"+
			"Stick with your pick or switch, then open it.\n\n"+
			"💰 Treasure: +%d\n🪤 Trap: -%d\n🕸 Empty: -%d\n🔮 Hint: -%d\n\n"+
			"%d rounds. The game ends early if your score hits 0.\n",
		rules.TreasureReward, rules.TrapPenalty, rules.EmptyPenalty, rules.HintCost, rules.MaxRounds,
	)
}
