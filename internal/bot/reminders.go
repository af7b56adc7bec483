package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/cardlearn/pkg/models"
)

// ReportDue reminds Telegram users about their due queues. Users that did not come
// through Telegram are skipped.
func (b *Bot) ReportDue(ctx context.Context, _ models.Date, counts []models.DueCount) error {
	sent := 0
	for _, c := range counts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		chatID, ok := telegramID(c.UserID)
		if !ok || c.Due <= 0 {
			continue
		}
		text := fmt.Sprintf("⏰ You have %d %s due in deck %d. Send /learn %d to review.", c.Due, cardsWord(c.Due), c.DeckID, c.DeckID)
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			b.log.Warn("Failed to send reminder", "user_id", c.UserID, "error", err)
			continue
		}
		sent++
	}
	b.log.Debug("Reminders sent", "count", sent)
	return nil
}

func telegramID(uid string) (int64, bool) {
	raw, ok := strings.CutPrefix(uid, "tg:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func cardsWord(n int) string {
	if n == 1 {
		return "card"
	}
	return "cards"
}
