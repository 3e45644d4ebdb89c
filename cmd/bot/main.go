// Package main is the entry point for the Treasure Chest bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"treasure-chest-bot/internal/advisory"
	"treasure-chest-bot/internal/bot"
	"treasure-chest-bot/internal/config"
	"treasure-chest-bot/internal/game"
	"treasure-chest-bot/internal/pkg/db"
	"treasure-chest-bot/internal/repository"
	"treasure-chest-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Leaderboard storage
	var storage service.LeaderboardStorage
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		if err := dbPool.Migrate(ctx, repository.LeaderboardSchema); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		storage = repository.NewLeaderboardRepository(dbPool.Pool, cfg.Storage.Key)
	default:
		log.Warn().Msg("Using in-memory leaderboard, scores are lost on restart")
		storage = repository.NewMemoryLeaderboardRepository()
	}

	leaderboard := service.NewLeaderboardService(storage, service.LeaderboardOptions{
		Limit:      cfg.Leaderboard.Limit,
		NameMaxLen: cfg.Leaderboard.NameMaxLen,
		DateFormat: cfg.Leaderboard.DateFormat,
		Timezone:   cfg.Leaderboard.Location(),
	})
	leaderboard.Init(ctx)

	// Advisory text
	var generator advisory.Generator
	if cfg.Advisory.Enabled() {
		generator = advisory.NewClient(&cfg.Advisory)
		log.Info().Str("model", cfg.Advisory.Model).Msg("Advisory text generator enabled")
	} else {
		log.Info().Msg("Advisory text generator disabled, using local phrases")
	}
	advisor := advisory.NewProvider(generator)

	rules := game.Rules{
		InitialScore:    cfg.Game.InitialScore,
		TreasureReward:  cfg.Game.TreasureReward,
		TrapPenalty:     cfg.Game.TrapPenalty,
		EmptyPenalty:    cfg.Game.EmptyPenalty,
		HintCost:        cfg.Game.HintCost,
		MaxRounds:       cfg.Game.MaxRounds,
		MaxChests:       cfg.Game.MaxChests,
		RevealDelay:     cfg.Game.RevealDelay,
		AdvisoryTimeout: cfg.Advisory.Timeout,
	}.WithDefaults()

	log.Info().
		Int("max_rounds", rules.MaxRounds).
		Int("hint_cost", rules.HintCost).
		Dur("reveal_delay", rules.RevealDelay).
		Msg("Game rules loaded")

	telegramBot, err := bot.New(&bot.Dependencies{
		Config:      cfg,
		Leaderboard: leaderboard,
		Advisor:     advisor,
		Rules:       rules,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
