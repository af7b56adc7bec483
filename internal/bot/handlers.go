package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/cardlearn/internal/learning"
	sr "github.com/example/cardlearn/internal/spaced_repetition"
	"github.com/example/cardlearn/pkg/models"
)

const helpText = "📖 Commands\n\n" +
	"/decks - list the decks you can learn\n" +
	"/enroll <deck> - add a deck to your cards\n" +
	"/learn <deck> - start or continue a session\n" +
	"/help - show this message\n\n" +
	"Rate each card with Again, Hard or Good. Cards you know well come back later."

var actionLabels = map[sr.Action]string{
	sr.Again: "🔁 Again",
	sr.Hard:  "😐 Hard",
	sr.Good:  "✅ Good",
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	uid := userID(message.From.ID)
	chatID := message.Chat.ID

	switch message.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText)
	case "decks":
		return b.handleDecks(ctx, chatID, uid)
	case "enroll":
		deckID, ok := deckArgument(message.CommandArguments())
		if !ok {
			return b.sendText(chatID, "Usage: /enroll <deck>")
		}
		return b.handleEnroll(ctx, chatID, uid, deckID)
	case "learn":
		deckID, ok := deckArgument(message.CommandArguments())
		if !ok {
			return b.sendText(chatID, "Usage: /learn <deck>")
		}
		next, err := b.session.GetNext(ctx, uid, deckID)
		if err != nil {
			return b.reportError(chatID, err)
		}
		return b.sendNext(chatID, deckID, next)
	default:
		return b.sendText(chatID, "Unknown command. Use /help to see the commands.")
	}
}

func deckArgument(args string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	return id, err == nil && id > 0
}

func (b *Bot) handleDecks(ctx context.Context, chatID int64, uid string) error {
	decks, err := b.decks.ListVisible(ctx, uid)
	if err != nil {
		return b.reportError(chatID, err)
	}
	if len(decks) == 0 {
		return b.sendText(chatID, "No decks available yet.")
	}
	return b.sendText(chatID, renderDecks(decks))
}

func (b *Bot) handleEnroll(ctx context.Context, chatID int64, uid string, deckID int64) error {
	created, err := b.enroll.AddToUser(ctx, deckID, uid)
	if err != nil {
		return b.reportError(chatID, err)
	}
	text := fmt.Sprintf("Added %d new cards. Send /learn %d to start.", created, deckID)
	if created == 0 {
		text = fmt.Sprintf("You already have every card of this deck. Send /learn %d to continue.", deckID)
	}
	return b.sendText(chatID, text)
}

// HandleCallback applies the outcome carried by an answer button and shows the next card.
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("Failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	a, err := parseAnswer(callback.Data)
	if err != nil {
		b.log.Warn("Unknown callback", "data", callback.Data)
		return b.sendText(chatID, "⚠️ Unknown action")
	}

	// drop the buttons so a card cannot be answered twice from the same message
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Request(edit); err != nil {
		b.log.Warn("Failed to clear keyboard", "error", err)
	}

	next, err := b.session.SubmitAction(ctx, userID(callback.From.ID), a.DeckID, a.CardID, a.Action)
	if err != nil {
		return b.reportError(chatID, err)
	}
	return b.sendNext(chatID, a.DeckID, next)
}

func (b *Bot) sendNext(chatID, deckID int64, next *learning.Next) error {
	if next.Finished {
		return b.sendText(chatID, "🎉 Nothing left to review in this deck today.")
	}
	msg := tgbotapi.NewMessage(chatID, renderCard(next.Card))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = answerKeyboard(deckID, next.Card.CardID)
	return b.sendMessage(msg)
}

func (b *Bot) reportError(chatID int64, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return b.sendText(chatID, "❌ Deck or card not found. Check /decks and /enroll first.")
	case errors.Is(err, sr.ErrInvalidAction):
		return b.sendText(chatID, "⚠️ Unknown answer")
	default:
		if sendErr := b.sendText(chatID, "❌ Something went wrong. Please try again later."); sendErr != nil {
			b.log.Warn("Failed to report error", "error", sendErr)
		}
		return err
	}
}

func answerKeyboard(deckID, cardID int64) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(sr.Actions))
	for _, action := range sr.Actions {
		data := answer{DeckID: deckID, CardID: cardID, Action: action.String()}.String()
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(actionLabels[action], data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func renderDecks(decks []models.Deck) string {
	var sb strings.Builder
	sb.WriteString("📚 Decks\n\n")
	for _, d := range decks {
		fmt.Fprintf(&sb, "%d. %s", d.ID, d.Title)
		if d.IsDefault {
			sb.WriteString(" (shared)")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderCard shows the word with the answer hidden under a spoiler. Options are sorted
// so their order gives nothing away.
func renderCard(c *learning.CardPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(c.Word))
	if c.Description != "" {
		fmt.Fprintf(&sb, "<i>%s</i>\n", html.EscapeString(c.Description))
	}
	if len(c.Decoys) > 0 {
		options := append([]string{c.Translation}, c.Decoys...)
		sort.Strings(options)
		sb.WriteString("\n")
		for _, o := range options {
			fmt.Fprintf(&sb, "• %s\n", html.EscapeString(o))
		}
	}
	fmt.Fprintf(&sb, "\nAnswer: <tg-spoiler>%s</tg-spoiler>", html.EscapeString(c.Translation))
	return sb.String()
}
