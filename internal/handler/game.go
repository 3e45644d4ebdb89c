// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"treasure-chest-bot/internal/advisory"
	"treasure-chest-bot/internal/game"
	"treasure-chest-bot/internal/model"
	"treasure-chest-bot/internal/service"
)

const (
	// saveTimeout bounds a leaderboard save triggered by /save.
	saveTimeout = 10 * time.Second

	// SessionIdleTimeout is how long an untouched session is kept.
	SessionIdleTimeout = time.Hour

	sessionCleanInterval = 5 * time.Minute
)

// Messenger sends and edits messages outside of a handler context.
// *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// board is the message a chat's game is drawn on.
// mu serializes edits; rendered is the Seq of the snapshot last drawn.
type board struct {
	mu       sync.Mutex
	msg      tele.StoredMessage
	tracked  bool
	rendered uint64
	drawn    bool
}

// GameHandler drives one game session per chat.
type GameHandler struct {
	messenger   Messenger
	leaderboard *service.LeaderboardService
	rules       game.Rules
	sessions    *game.Registry

	boards   map[int64]*board // chatID -> board message
	boardsMu sync.Mutex
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(
	messenger Messenger,
	leaderboard *service.LeaderboardService,
	advisor advisory.Provider,
	rules game.Rules,
) *GameHandler {
	h := &GameHandler{
		messenger:   messenger,
		leaderboard: leaderboard,
		boards:      make(map[int64]*board),
	}
	h.sessions = game.NewRegistry(func(id int64) *game.Session {
		return game.NewSession(id, rules,
			game.WithAdvisor(advisor),
			game.WithRecorder(leaderboard),
			game.WithNotify(h.refresh),
		)
	})
	h.rules = rules.WithDefaults()
	return h
}

// Sessions exposes the session registry.
func (h *GameHandler) Sessions() *game.Registry {
	return h.sessions
}

// HandleStart handles the /start command. A chat with a session gets its
// current board back; a new chat sees the title screen.
func (h *GameHandler) HandleStart(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	if session, ok := h.sessions.Get(chat.ID); ok {
		return h.sendBoard(c, session.Snapshot())
	}
	snap := game.Snapshot{ID: chat.ID, State: model.RoundState{Phase: model.PhaseStart}}
	return h.sendBoard(c, snap)
}

// StartSessionCleaner drops idle sessions until stop is closed.
func (h *GameHandler) StartSessionCleaner(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(sessionCleanInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				h.cleanIdleSessions(now)
			}
		}
	}()
}

// cleanIdleSessions removes sessions untouched for SessionIdleTimeout and
// forgets their boards. It returns how many were removed.
func (h *GameHandler) cleanIdleSessions(now time.Time) int {
	removed := 0
	for _, id := range h.sessions.IDs() {
		session, ok := h.sessions.Get(id)
		if !ok || now.Sub(session.LastActive()) < SessionIdleTimeout {
			continue
		}
		if h.sessions.Remove(id) {
			h.boardsMu.Lock()
			delete(h.boards, id)
			h.boardsMu.Unlock()
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("remaining", h.sessions.Count()).Msg("Idle sessions cleaned")
	}
	return removed
}

// HandleRules handles the /rules command.
func (h *GameHandler) HandleRules(c tele.Context) error {
	return c.Reply(RulesText(h.rules))
}

// HandlePlay handles the /play command. It starts a game from the title or
// game over screen and otherwise re-sends the running game's board.
func (h *GameHandler) HandlePlay(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	session, created := h.sessions.GetOrCreate(chat.ID)
	if created {
		log.Info().Int64("chat_id", chat.ID).Msg("Session created")
	}
	if !session.StartGame() {
		session.Restart()
	}
	return h.sendBoard(c, session.Snapshot())
}

// HandleSave handles the /save <name> command.
func (h *GameHandler) HandleSave(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	session, ok := h.sessions.Get(chat.ID)
	if !ok {
		return c.Reply("❌ No finished game to save. Send /play to start.")
	}

	name := ""
	if msg := c.Message(); msg != nil {
		name = msg.Payload
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	entry, err := session.SaveScore(ctx, name)
	switch {
	case errors.Is(err, game.ErrNotGameOver):
		return c.Reply("❌ You can save once the game is over.")
	case errors.Is(err, game.ErrAlreadySaved):
		return c.Reply("ℹ️ This game's score is already saved.")
	case errors.Is(err, service.ErrEmptyName):
		return c.Reply("❌ Usage: /save <name>")
	case errors.Is(err, service.ErrNameTooLong):
		return c.Reply(fmt.Sprintf("❌ That %s.", err))
	case err != nil:
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to save score")
		return c.Reply("❌ Could not save your score, please try again later.")
	}

	h.refresh(session.Snapshot())
	return c.Reply(fmt.Sprintf("🏆 Saved %s with %d points! See /top.", entry.Name, entry.Score))
}

// HandleCallback routes inline keyboard presses to session intents.
func (h *GameHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	chat := c.Chat()
	if callback == nil || chat == nil {
		return nil
	}
	data := strings.TrimPrefix(callback.Data, "\f")

	if data == CallbackNoop {
		return c.Respond()
	}

	session, created := h.sessions.GetOrCreate(chat.ID)
	if created {
		log.Info().Int64("chat_id", chat.ID).Msg("Session created")
	}

	applied := h.apply(session, data)
	if !applied {
		return c.Respond(&tele.CallbackResponse{Text: "That move is not available right now."})
	}
	if err := c.Respond(); err != nil {
		log.Debug().Err(err).Msg("Failed to answer callback")
	}

	if callback.Message != nil {
		h.trackBoard(chat.ID, callback.Message)
	}
	return h.draw(chat.ID, session.Snapshot(), func(_ tele.StoredMessage, text string, markup *tele.ReplyMarkup) error {
		return c.Edit(text, markup)
	})
}

// apply maps callback data to an intent.
func (h *GameHandler) apply(session *game.Session, data string) bool {
	switch {
	case strings.HasPrefix(data, CallbackSelect):
		id, err := strconv.Atoi(strings.TrimPrefix(data, CallbackSelect))
		if err != nil {
			return false
		}
		return session.Select(id)
	case data == CallbackConfirm:
		return session.Confirm()
	case data == CallbackDecide:
		return session.Decide()
	case data == CallbackHint:
		return session.BuyHint()
	case data == CallbackNext:
		return session.NextRound()
	case data == CallbackPlay:
		return session.StartGame() || session.Restart()
	case data == CallbackRestart:
		return session.Restart()
	case data == CallbackTitle:
		return session.ReturnToTitle()
	default:
		log.Debug().Str("data", data).Msg("Unknown callback")
		return false
	}
}

// sendBoard sends a fresh board message and remembers it for later edits.
func (h *GameHandler) sendBoard(c tele.Context, snap game.Snapshot) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	b := h.board(chat.ID)
	b.mu.Lock()
	defer b.mu.Unlock()

	msg, err := h.messenger.Send(chat, RenderBoard(snap, h.rules), BuildBoardMarkup(snap, h.rules))
	if err != nil {
		return fmt.Errorf("failed to send board: %w", err)
	}
	if msg != nil {
		b.msg = storedMessage(chat.ID, msg)
		b.tracked = true
		b.rendered, b.drawn = snap.Seq, true
	}
	return nil
}

func (h *GameHandler) board(chatID int64) *board {
	h.boardsMu.Lock()
	defer h.boardsMu.Unlock()
	b, ok := h.boards[chatID]
	if !ok {
		b = &board{}
		h.boards[chatID] = b
	}
	return b
}

// trackBoard makes msg the chat's board. Switching to another message
// forgets what was drawn, since that message shows something else.
func (h *GameHandler) trackBoard(chatID int64, msg *tele.Message) {
	if msg == nil {
		return
	}
	b := h.board(chatID)
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := storedMessage(chatID, msg)
	if b.tracked && b.msg == stored {
		return
	}
	b.msg = stored
	b.tracked = true
	b.drawn = false
}

// refresh redraws a chat's board after a background change.
func (h *GameHandler) refresh(snap game.Snapshot) {
	h.boardsMu.Lock()
	b, ok := h.boards[snap.ID]
	h.boardsMu.Unlock()
	if !ok {
		return
	}

	b.mu.Lock()
	tracked := b.tracked
	b.mu.Unlock()
	if !tracked {
		return
	}

	err := h.draw(snap.ID, snap, func(msg tele.StoredMessage, text string, markup *tele.ReplyMarkup) error {
		_, err := h.messenger.Edit(msg, text, markup)
		return err
	})
	if err != nil {
		log.Debug().Err(err).Int64("chat_id", snap.ID).Msg("Failed to refresh board")
	}
}

// draw renders snap through edit unless the board already shows the same or
// a newer snapshot. Edits of one chat never overlap.
func (h *GameHandler) draw(
	chatID int64,
	snap game.Snapshot,
	edit func(msg tele.StoredMessage, text string, markup *tele.ReplyMarkup) error,
) error {
	b := h.board(chatID)
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drawn && snap.Seq <= b.rendered {
		log.Debug().
			Int64("chat_id", chatID).
			Uint64("seq", snap.Seq).
			Uint64("rendered", b.rendered).
			Msg("Skipped outdated board")
		return nil
	}

	err := edit(b.msg, RenderBoard(snap, h.rules), BuildBoardMarkup(snap, h.rules))
	if err != nil && !isNotModified(err) {
		return err
	}
	b.rendered, b.drawn = snap.Seq, true
	return nil
}

func storedMessage(chatID int64, msg *tele.Message) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(msg.ID),
		ChatID:    chatID,
	}
}

// isNotModified reports Telegram's rejection of an edit that changes nothing.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
