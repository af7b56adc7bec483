package learning

import (
	"context"
	"fmt"

	"github.com/example/cardlearn/internal/clock"
	"github.com/example/cardlearn/internal/logger"
	sr "github.com/example/cardlearn/internal/spaced_repetition"
	"github.com/example/cardlearn/pkg/models"
)

// Controller drives one request/response cycle of a learning session
type Controller struct {
	progress ProgressStore
	cards    CardStore
	decoys   DecoyProvider
	clock    clock.Clock
	log      *logger.Logger
}

// NewController wires a session controller. decoys may be nil.
func NewController(progress ProgressStore, cards CardStore, decoys DecoyProvider, clk clock.Clock, log *logger.Logger) *Controller {
	return &Controller{
		progress: progress,
		cards:    cards,
		decoys:   decoys,
		clock:    clk,
		log:      log.With("component", "learning.Controller"),
	}
}

// GetNext returns the user's next due card in the deck, or Finished.
func (c *Controller) GetNext(ctx context.Context, userID string, deckID int64) (*Next, error) {
	rec, err := c.progress.PopCard(ctx, userID, deckID, clock.Today(c.clock))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return Finished, nil
	}

	card, err := c.cards.GetByID(ctx, rec.CardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %d: %w", rec.CardID, err)
	}
	payload := &CardPayload{
		CardID:      card.ID,
		DeckID:      card.DeckID,
		Word:        card.Word,
		Translation: card.Translation,
		Description: card.Description,
		Decoys:      []string{},
	}
	if c.decoys != nil {
		decoys, err := c.decoys.Decoys(ctx, *card)
		if err != nil {
			return nil, fmt.Errorf("failed to build decoys for card %d: %w", card.ID, err)
		}
		payload.Decoys = decoys
	}
	return &Next{Card: payload}, nil
}

// SubmitAction applies the user's outcome to their record for cardID within deckID and
// returns the following card. It fails with models.ErrNotFound when the user has no such
// record in this deck and with spaced_repetition.ErrInvalidAction for an unknown action;
// in both cases nothing is written.
func (c *Controller) SubmitAction(ctx context.Context, userID string, deckID, cardID int64, action string) (*Next, error) {
	now := c.clock.Now()
	today := models.DateOf(now)
	key := models.ProgressKey{UserID: userID, DeckID: deckID, CardID: cardID}

	updated, err := c.progress.Modify(ctx, key, now, func(p models.ProgressRecord) (models.ProgressRecord, bool, error) {
		res, err := sr.HandleAction(p, action, today)
		if err != nil {
			return p, false, err
		}
		return res.Record, res.Advanced, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("Progress updated",
		"user_id", userID,
		"card_id", cardID,
		"action", action,
		"stage", updated.Stage.String(),
		"ease", updated.Ease.String(),
		"due", updated.Due.String(),
		"priority", updated.Priority,
	)

	return c.GetNext(ctx, userID, deckID)
}
