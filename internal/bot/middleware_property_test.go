// Package bot provides middleware for the Telegram bot.
// Property-based tests for middleware functions.
package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"treasure-chest-bot/internal/config"
)

// fakeContext implements the parts of tele.Context the middleware touches.
type fakeContext struct {
	tele.Context
	chat *tele.Chat
	sent []interface{}
}

func (c *fakeContext) Chat() *tele.Chat { return c.chat }
func (c *fakeContext) Sender() *tele.User { return nil }
func (c *fakeContext) Callback() *tele.Callback { return nil }
func (c *fakeContext) Text() string { return "/play" }
func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, what)
	return nil
}

// TestWhitelistEnforcementProperty tests that an update reaches the handler
// if and only if its chat is whitelisted.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			// Group chat IDs are typically negative
			chatIDs[i] = -rapid.Int64Range(1, 1000).Draw(t, "chatID")
		}
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}}

		testChatID := -rapid.Int64Range(1, 1000).Draw(t, "testChatID")

		handled := false
		handler := WhitelistMiddleware(cfg)(func(tele.Context) error {
			handled = true
			return nil
		})
		if err := handler(&fakeContext{chat: &tele.Chat{ID: testChatID}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := false
		for _, id := range chatIDs {
			if id == testChatID {
				expected = true
				break
			}
		}
		if handled != expected {
			t.Fatalf("Whitelist mismatch: chatID=%d, whitelistedChats=%v, expected=%v, got=%v",
				testChatID, chatIDs, expected, handled)
		}
	})
}

// TestEmptyWhitelistAllowsAllProperty tests that an empty whitelist lets every chat through.
func TestEmptyWhitelistAllowsAllProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chatID := rapid.Int64().Draw(t, "chatID")
		cfg := &config.Config{}

		handled := false
		handler := WhitelistMiddleware(cfg)(func(tele.Context) error {
			handled = true
			return nil
		})
		_ = handler(&fakeContext{chat: &tele.Chat{ID: chatID}})

		if !handled {
			t.Fatalf("chat %d should be allowed with an empty whitelist", chatID)
		}
	})
}

func TestWhitelistMiddleware_NoChat(t *testing.T) {
	handler := WhitelistMiddleware(&config.Config{})(func(tele.Context) error {
		return errors.New("must not be called")
	})

	assert.NoError(t, handler(&fakeContext{}))
}

func TestRecoveryMiddleware(t *testing.T) {
	c := &fakeContext{chat: &tele.Chat{ID: 1}}
	handler := LoggingMiddleware()(RecoveryMiddleware()(func(tele.Context) error {
		panic("boom")
	}))

	assert.NoError(t, handler(c))
	assert.Len(t, c.sent, 1)
}
