package learning

import (
	"context"

	"github.com/example/cardlearn/internal/clock"
	"github.com/example/cardlearn/internal/logger"
)

// Enrollment adds decks to a user's learning set
type Enrollment struct {
	decks    DeckStore
	progress ProgressStore
	clock    clock.Clock
	log      *logger.Logger
}

func NewEnrollment(decks DeckStore, progress ProgressStore, clk clock.Clock, log *logger.Logger) *Enrollment {
	return &Enrollment{
		decks:    decks,
		progress: progress,
		clock:    clk,
		log:      log.With("component", "learning.Enrollment"),
	}
}

// AddToUser creates a default progress record for every card of the deck the user
// lacks one for. Re-adding a deck never resets progress. It returns the number of
// records created; a deck the user cannot see is models.ErrNotFound.
func (e *Enrollment) AddToUser(ctx context.Context, deckID int64, userID string) (int, error) {
	if _, err := e.decks.GetVisible(ctx, userID, deckID); err != nil {
		return 0, err
	}
	created, err := e.progress.EnsureForDeck(ctx, userID, deckID, clock.Today(e.clock))
	if err != nil {
		return 0, err
	}
	e.log.Info("Deck enrolled", "user_id", userID, "deck_id", deckID, "created", created)
	return created, nil
}
