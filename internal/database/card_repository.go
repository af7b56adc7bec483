package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/cardlearn/pkg/models"
)

// CardRepository handles database operations for cards
type CardRepository struct {
	db *sqlx.DB
}

// NewCardRepository creates a new repository instance
func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = "id, deck_id, word, translation, description, created_at"

const insertCard = "INSERT INTO cards (deck_id, word, translation, description) VALUES (?, ?, ?, ?)"

// Create inserts a new card
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	id, err := insertReturningID(ctx, r.db, insertCard, card.DeckID, card.Word, card.Translation, card.Description)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	card.ID = id
	return nil
}

// CreateMany inserts cards in a single transaction and fills in their IDs
func (r *CardRepository) CreateMany(ctx context.Context, cards []models.Card) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range cards {
			c := &cards[i]
			id, err := insertReturningID(ctx, tx, insertCard, c.DeckID, c.Word, c.Translation, c.Description)
			if err != nil {
				return fmt.Errorf("failed to create card %q: %w", c.Word, err)
			}
			c.ID = id
		}
		return nil
	})
}

// GetByID returns a card by ID
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	var card models.Card
	err := r.db.GetContext(ctx, &card, r.db.Rebind("SELECT "+cardColumns+" FROM cards WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by ID: %w", err)
	}
	return &card, nil
}

// GetByDeck returns the cards of a deck
func (r *CardRepository) GetByDeck(ctx context.Context, deckID int64) ([]models.Card, error) {
	cards := []models.Card{}
	err := r.db.SelectContext(ctx, &cards, r.db.Rebind("SELECT "+cardColumns+" FROM cards WHERE deck_id = ? ORDER BY id"), deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by deck: %w", err)
	}
	return cards, nil
}

// RandomTranslations returns up to limit translations from the deck that differ
// ignoring case and surrounding spaces, skipping the given card and its translation
func (r *CardRepository) RandomTranslations(ctx context.Context, deckID int64, exclude models.Card, limit int) ([]string, error) {
	translations := []string{}
	if limit <= 0 {
		return translations, nil
	}
	query := `
		SELECT MIN(translation) AS translation
		FROM cards
		WHERE deck_id = ? AND id <> ? AND LOWER(TRIM(translation)) <> LOWER(TRIM(?))
		GROUP BY LOWER(TRIM(translation))
		ORDER BY RANDOM()
		LIMIT ?
	`
	err := r.db.SelectContext(ctx, &translations, r.db.Rebind(query), deckID, exclude.ID, exclude.Translation, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get random translations: %w", err)
	}
	return translations, nil
}

// Delete removes a card; its progress records and learning logs cascade
func (r *CardRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM cards WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("card %d: %w", id, models.ErrNotFound)
	}
	return nil
}
