package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"treasure-chest-bot/internal/model"
	"treasure-chest-bot/internal/service"
)

// topShown is how many leaderboard entries /top prints.
const topShown = 10

// LeaderboardHandler handles leaderboard commands.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// HandleTop handles the /top command.
func (h *LeaderboardHandler) HandleTop(c tele.Context) error {
	entries := h.leaderboard.Top(context.Background(), topShown)
	return c.Reply(RenderLeaderboard(entries))
}

// RenderLeaderboard formats leaderboard entries with medals for the top three.
func RenderLeaderboard(entries []model.LeaderboardEntry) string {
	var b strings.Builder
	b.WriteString("🏆 Hall of Fortune\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")

	if len(entries) == 0 {
		b.WriteString("No scores yet. Send /play!\n")
	} else {
		medals := []string{"🥇", "🥈", "🥉"}
		for i, e := range entries {
			rank := fmt.Sprintf("%d.", i+1)
			if i < len(medals) {
				rank = medals[i]
			}
			fmt.Fprintf(&b, "%s %s: %d (%s)\n", rank, e.Name, e.Score, e.Date)
		}
	}

	b.WriteString("━━━━━━━━━━━━━━━")
	return b.String()
}
