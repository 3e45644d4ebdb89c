// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"treasure-chest-bot/internal/advisory"
	"treasure-chest-bot/internal/config"
	"treasure-chest-bot/internal/game"
	"treasure-chest-bot/internal/handler"
	"treasure-chest-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot  *tele.Bot
	cfg  *config.Config
	stop chan struct{}

	gameHandler        *handler.GameHandler
	leaderboardHandler *handler.LeaderboardHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config      *config.Config
	Leaderboard *service.LeaderboardService
	Advisor     advisory.Provider
	Rules       game.Rules
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:                teleBot,
		cfg:                deps.Config,
		stop:               make(chan struct{}),
		gameHandler:        handler.NewGameHandler(teleBot, deps.Leaderboard, deps.Advisor, deps.Rules),
		leaderboardHandler: handler.NewLeaderboardHandler(deps.Leaderboard),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.gameHandler.HandleStart)
	b.bot.Handle("/play", b.gameHandler.HandlePlay)
	b.bot.Handle("/rules", b.gameHandler.HandleRules)
	b.bot.Handle("/save", b.gameHandler.HandleSave)
	b.bot.Handle("/top", b.leaderboardHandler.HandleTop)

	b.bot.Handle(tele.OnCallback, b.gameHandler.HandleCallback)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.gameHandler.StartSessionCleaner(b.stop)
	b.bot.Start()
}

// Stop stops the bot and waits for in-flight advisory requests.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	close(b.stop)
	b.gameHandler.Sessions().Wait()
	log.Info().Int("sessions", b.gameHandler.Sessions().Count()).Msg("Sessions drained")
}
