package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"treasure-chest-bot/internal/game"
	"treasure-chest-bot/internal/model"
)

func uniques(markup *tele.ReplyMarkup) [][]string {
	var rows [][]string
	for _, row := range markup.InlineKeyboard {
		var r []string
		for _, btn := range row {
			r = append(r, btn.Unique)
		}
		rows = append(rows, r)
	}
	return rows
}

func roundOne() []model.Chest {
	return []model.Chest{
		{ID: 1, Type: model.ChestTreasure, Status: model.StatusClosed},
		{ID: 2, Type: model.ChestTrap, Status: model.StatusClosed},
		{ID: 3, Type: model.ChestEmpty, Status: model.StatusClosed},
	}
}

func TestChestLabel(t *testing.T) {
	closed := model.Chest{ID: 4, Type: model.ChestTreasure, Status: model.StatusClosed}
	assert.Equal(t, "📦 4", ChestLabel(closed, 0))
	assert.Equal(t, "👉 4", ChestLabel(closed, 4))

	revealed := model.Chest{ID: 2, Type: model.ChestTrap, Status: model.StatusRevealed}
	assert.Equal(t, "🪤 2", ChestLabel(revealed, 0))

	opened := model.Chest{ID: 1, Type: model.ChestTreasure, Status: model.StatusOpened}
	assert.Equal(t, "💰 1", ChestLabel(opened, 1), "opened chests show their content")
}

func TestBuildBoardMarkup(t *testing.T) {
	rules := game.DefaultRules()

	tests := []struct {
		name  string
		state model.RoundState
		want  [][]string
	}{
		{
			name:  "title",
			state: model.RoundState{Phase: model.PhaseStart},
			want:  [][]string{{CallbackPlay}},
		},
		{
			name:  "selection without pick",
			state: model.RoundState{Phase: model.PhaseSelection, Round: 1, Score: 100, Chests: roundOne()},
			want:  [][]string{{"chest_sel:1", "chest_sel:2", "chest_sel:3"}},
		},
		{
			name: "selection with pick",
			state: model.RoundState{
				Phase: model.PhaseSelection, Round: 1, Score: 100,
				Chests: roundOne(), SelectedChestID: 2,
			},
			want: [][]string{{"chest_sel:1", "chest_sel:2", "chest_sel:3"}, {CallbackConfirm}},
		},
		{
			name: "decision with hint",
			state: model.RoundState{
				Phase: model.PhaseDecision, Round: 1, Score: 100, SelectedChestID: 3,
				Chests: []model.Chest{
					{ID: 1, Type: model.ChestTreasure, Status: model.StatusClosed},
					{ID: 2, Type: model.ChestTrap, Status: model.StatusRevealed},
					{ID: 3, Type: model.ChestEmpty, Status: model.StatusClosed},
				},
			},
			want: [][]string{{"chest_sel:1", CallbackNoop, "chest_sel:3"}, {CallbackDecide, CallbackHint}},
		},
		{
			name: "decision too poor for a hint",
			state: model.RoundState{
				Phase: model.PhaseDecision, Round: 1, Score: 10, SelectedChestID: 1,
				Chests: roundOne(),
			},
			want: [][]string{{"chest_sel:1", "chest_sel:2", "chest_sel:3"}, {CallbackDecide}},
		},
		{
			name:  "result",
			state: model.RoundState{Phase: model.PhaseResult, Round: 2, Score: 90, Chests: roundOne()},
			want:  [][]string{{CallbackNoop, CallbackNoop, CallbackNoop}, {CallbackNext}},
		},
		{
			name:  "game over",
			state: model.RoundState{Phase: model.PhaseGameOver, Round: 5, Score: 90, Chests: roundOne()},
			want:  [][]string{{CallbackNoop, CallbackNoop, CallbackNoop}, {CallbackRestart, CallbackTitle}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := BuildBoardMarkup(game.Snapshot{State: tt.state}, rules)
			assert.Equal(t, tt.want, uniques(markup))
		})
	}
}

func TestBuildBoardMarkup_WrapsRows(t *testing.T) {
	chests := make([]model.Chest, 7)
	for i := range chests {
		chests[i] = model.Chest{ID: i + 1, Type: model.ChestTrap, Status: model.StatusClosed}
	}
	snap := game.Snapshot{State: model.RoundState{Phase: model.PhaseSelection, Round: 9, Chests: chests}}

	rows := uniques(BuildBoardMarkup(snap, game.DefaultRules()))

	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 3)
	assert.Equal(t, []string{"chest_sel:7"}, rows[2])
}

func TestRenderBoard(t *testing.T) {
	rules := game.DefaultRules()

	title := RenderBoard(game.Snapshot{State: model.RoundState{Phase: model.PhaseStart}}, rules)
	assert.Contains(t, title, "Treasure Chests")
	assert.Contains(t, title, "Hint: -20")

	over := RenderBoard(game.Snapshot{
		Message: "Game over! Final score: 90.",
		State: model.RoundState{
			Phase: model.PhaseGameOver, Round: 1, Score: 90,
			History: []model.RoundResult{{Round: 1, Outcome: model.OutcomeEmpty, ScoreChange: -10}},
		},
	}, rules)
	assert.Contains(t, over, "Score: 90")
	assert.Contains(t, over, "Round 1: 🕸 -10")
	assert.Contains(t, over, "/save")

	saved := RenderBoard(game.Snapshot{Saved: true, State: model.RoundState{Phase: model.PhaseGameOver}}, rules)
	assert.NotContains(t, saved, "/save")
}

func TestRenderLeaderboard(t *testing.T) {
	assert.Contains(t, RenderLeaderboard(nil), "No scores yet")

	text := RenderLeaderboard([]model.LeaderboardEntry{
		{Name: "alice", Score: 600, Date: "2024-01-01"},
		{Name: "bob", Score: 300, Date: "2024-01-02"},
		{Name: "carol", Score: 200, Date: "2024-01-03"},
		{Name: "dave", Score: 100, Date: "2024-01-04"},
	})
	assert.Contains(t, text, "🥇 alice: 600 (2024-01-01)")
	assert.Contains(t, text, "🥉 carol: 200")
	assert.Contains(t, text, "4. dave: 100")
}
