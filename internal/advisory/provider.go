// Package advisory supplies the short narrative strings shown next to the
// board: flavor text for each stage of a round and paid hints.
// Text comes from an external text generator when one is configured and from
// local phrase banks otherwise. Callers never see a generator error.
package advisory

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"treasure-chest-bot/internal/model"
)

// FlavorRequest describes the moment flavor text is requested for.
type FlavorRequest struct {
	Stage   model.Phase   // selection, reveal or result
	Round   int
	Outcome model.Outcome // only set for the result stage
}

// Provider returns advisory text. Implementations must always return a
// non-empty string and must not block past ctx.
type Provider interface {
	Flavor(ctx context.Context, req FlavorRequest) string
	Hint(ctx context.Context, chests []model.Chest, selectedID int) string
}

// Generator turns a prompt into text. It may fail.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FallbackProvider asks a Generator first and substitutes a phrase from the
// local bank when the generator is missing, fails, or returns nothing.
type FallbackProvider struct {
	gen  Generator
	pick func(n int) int
}

// NewProvider creates a FallbackProvider. gen may be nil, in which case only
// local phrases are used.
func NewProvider(gen Generator) *FallbackProvider {
	return &FallbackProvider{
		gen:  gen,
		pick: rand.Intn,
	}
}

// Flavor returns narrative text for the given stage.
func (p *FallbackProvider) Flavor(ctx context.Context, req FlavorRequest) string {
	if text, ok := p.generate(ctx, flavorPrompt(req)); ok {
		return text
	}
	return p.choose(flavorBank(req))
}

// Hint returns a cryptic hint about the player's current pick.
func (p *FallbackProvider) Hint(ctx context.Context, chests []model.Chest, selectedID int) string {
	if text, ok := p.generate(ctx, hintPrompt(chests, selectedID)); ok {
		return text
	}
	return p.choose(hintBank(chests, selectedID))
}

func (p *FallbackProvider) generate(ctx context.Context, prompt string) (string, bool) {
	if p.gen == nil {
		return "", false
	}
	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Advisory generator failed, using fallback phrase")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

func (p *FallbackProvider) choose(bank []string) string {
	return bank[p.pick(len(bank))]
}
