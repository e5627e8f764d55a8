// Package bot wires Telegram updates to transcription, parsing and storage.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/claude/repbot/internal/catalog"
	"github.com/claude/repbot/internal/nlp"
	"github.com/claude/repbot/internal/speech"
	"github.com/claude/repbot/internal/storage"
)

// Bot is the long-polling Telegram bot.
type Bot struct {
	api         *tgbotapi.BotAPI
	db          *storage.DB
	state       *StateDB
	parser      *nlp.Parser
	transcriber *speech.Transcriber
	catalog     *catalog.Catalog
	logger      *slog.Logger
}

// New connects to the Telegram API and assembles the bot.
func New(token string, db *storage.DB, state *StateDB, parser *nlp.Parser, transcriber *speech.Transcriber, cat *catalog.Catalog, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:         api,
		db:          db,
		state:       state,
		parser:      parser,
		transcriber: transcriber,
		catalog:     cat,
		logger:      logger,
	}, nil
}

// Run polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches one update. Unrecognized update kinds are logged
// and dropped rather than failing the loop.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Voice != nil:
		b.handleVoice(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		b.handleText(ctx, update.Message)
	default:
		b.logger.Warn("unrecognized update", "update_id", update.UpdateID)
	}
}

// send delivers a plain-text reply, logging failures instead of propagating
// them: a lost message should not take down the poll loop.
func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("sending message", "chat_id", chatID, "error", err)
	}
}

// sendHTML delivers an HTML-formatted reply with an optional keyboard.
func (b *Bot) sendHTML(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("sending message", "chat_id", chatID, "error", err)
	}
}

// answerCallback acknowledges a callback query so the client stops the
// spinner.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error("answering callback", "error", err)
	}
}
