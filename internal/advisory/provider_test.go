package advisory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"treasure-chest-bot/internal/model"
)

type stubGenerator struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func firstPick(int) int { return 0 }

func TestFallbackProvider_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{text: "  The lids rattle.  "}
	p := &FallbackProvider{gen: gen, pick: firstPick}

	text := p.Flavor(context.Background(), FlavorRequest{Stage: model.PhaseSelection, Round: 2})

	assert.Equal(t, "The lids rattle.", text)
	assert.Contains(t, gen.prompts[0], "Round 2.")
}

func TestFallbackProvider_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{"no generator", nil},
		{"generator error", &stubGenerator{err: errors.New("quota exceeded")}},
		{"blank text", &stubGenerator{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &FallbackProvider{gen: tt.gen, pick: firstPick}

			text := p.Flavor(context.Background(), FlavorRequest{
				Stage:   model.PhaseResult,
				Outcome: model.OutcomeLoss,
			})
			assert.Equal(t, lossPhrases[0], text)
		})
	}
}

func TestFlavorBank(t *testing.T) {
	assert.Equal(t, selectionPhrases, flavorBank(FlavorRequest{Stage: model.PhaseSelection}))
	assert.Equal(t, revealPhrases, flavorBank(FlavorRequest{Stage: model.PhaseReveal}))
	assert.Equal(t, winPhrases, flavorBank(FlavorRequest{Stage: model.PhaseResult, Outcome: model.OutcomeWin}))
	assert.Equal(t, emptyPhrases, flavorBank(FlavorRequest{Stage: model.PhaseResult, Outcome: model.OutcomeEmpty}))
}

func TestHint_WarmOnlyOnTreasure(t *testing.T) {
	chests := []model.Chest{
		{ID: 1, Type: model.ChestTrap, Status: model.StatusClosed},
		{ID: 2, Type: model.ChestTreasure, Status: model.StatusClosed},
		{ID: 3, Type: model.ChestEmpty, Status: model.StatusRevealed},
	}
	p := &FallbackProvider{pick: firstPick}

	assert.Equal(t, warmHints[0], p.Hint(context.Background(), chests, 2))
	assert.Equal(t, coldHints[0], p.Hint(context.Background(), chests, 1))
}

func TestHintPrompt_SkipsRevealedChests(t *testing.T) {
	chests := []model.Chest{
		{ID: 1, Type: model.ChestTrap, Status: model.StatusClosed},
		{ID: 2, Type: model.ChestEmpty, Status: model.StatusRevealed},
	}

	prompt := hintPrompt(chests, 1)

	assert.Contains(t, prompt, "Chest 1 (player's pick) holds: trap")
	assert.False(t, strings.Contains(prompt, "Chest 2"))
}
