// Package bot runs learning sessions over Telegram.
package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/cardlearn/internal/learning"
	"github.com/example/cardlearn/internal/logger"
	"github.com/example/cardlearn/pkg/models"
)

// API is the subset of the telegram client the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type DeckStore interface {
	ListVisible(ctx context.Context, userID string) ([]models.Deck, error)
}

type Enroller interface {
	AddToUser(ctx context.Context, deckID int64, userID string) (int, error)
}

type Session interface {
	GetNext(ctx context.Context, userID string, deckID int64) (*learning.Next, error)
	SubmitAction(ctx context.Context, userID string, deckID, cardID int64, action string) (*learning.Next, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api     API
	cfg     Config
	decks   DeckStore
	enroll  Enroller
	session Session
	log     *logger.Logger

	wg sync.WaitGroup
}

// New connects to Telegram with cfg.Token.
func New(cfg Config, decks DeckStore, enroll Enroller, session Session, log *logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	botAPI.Debug = cfg.Debug
	log.Info("Authorized on account", "username", botAPI.Self.UserName)
	return newBot(botAPI, cfg, decks, enroll, session, log), nil
}

func newBot(api API, cfg Config, decks DeckStore, enroll Enroller, session Session, log *logger.Logger) *Bot {
	return &Bot{
		api:     api,
		cfg:     cfg,
		decks:   decks,
		enroll:  enroll,
		session: session,
		log:     log.With("component", "bot"),
	}
}

// Run long-polls for updates until ctx is cancelled and waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = int(b.cfg.UpdateTimeout.Seconds())
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.log.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendText(update.Message.Chat.ID, "I don't understand. Use /help to see the commands.")
	}
	if err != nil {
		b.log.Error("Failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}
