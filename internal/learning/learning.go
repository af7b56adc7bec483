// Package learning runs learning sessions: it picks the next due card for a user
// within a deck, applies submitted outcomes and enrolls users into decks.
package learning

import (
	"context"
	"time"

	"github.com/example/cardlearn/pkg/models"
)

// ProgressStore is the persistence the session and enrollment flows need
type ProgressStore interface {
	PopCard(ctx context.Context, userID string, deckID int64, today models.Date) (*models.ProgressRecord, error)
	Modify(ctx context.Context, key models.ProgressKey, at time.Time, fn func(models.ProgressRecord) (models.ProgressRecord, bool, error)) (*models.ProgressRecord, error)
	EnsureForDeck(ctx context.Context, userID string, deckID int64, today models.Date) (int, error)
}

// CardStore looks up cards and sibling translations
type CardStore interface {
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	RandomTranslations(ctx context.Context, deckID int64, exclude models.Card, limit int) ([]string, error)
}

// DeckStore resolves decks a user may see
type DeckStore interface {
	GetVisible(ctx context.Context, userID string, id int64) (*models.Deck, error)
}

// CardPayload is what a client needs to present a card
type CardPayload struct {
	CardID      int64    `json:"id"`
	DeckID      int64    `json:"deck"`
	Word        string   `json:"word"`
	Translation string   `json:"translation"`
	Description string   `json:"description"`
	Decoys      []string `json:"decoys"`
}

// Next is either the card to show or the end of the session.
type Next struct {
	Finished bool
	Card     *CardPayload
}

// Finished is the terminal value returned when nothing is due.
var Finished = &Next{Finished: true}
