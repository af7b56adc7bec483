package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/cardlearn/pkg/models"
)

// DeckRepository handles database operations for decks
type DeckRepository struct {
	db *sqlx.DB
}

// NewDeckRepository creates a new repository instance
func NewDeckRepository(db *sqlx.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

const deckColumns = "id, title, is_default, owner_id, created_at"

// Create inserts a new deck
func (r *DeckRepository) Create(ctx context.Context, deck *models.Deck) error {
	id, err := insertReturningID(ctx, r.db,
		"INSERT INTO decks (title, is_default, owner_id) VALUES (?, ?, ?)",
		deck.Title, deck.IsDefault, deck.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	deck.ID = id
	return r.db.GetContext(ctx, &deck.CreatedAt, r.db.Rebind("SELECT created_at FROM decks WHERE id = ?"), id)
}

// GetByID returns a deck by ID
func (r *DeckRepository) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	var deck models.Deck
	err := r.db.GetContext(ctx, &deck, r.db.Rebind("SELECT "+deckColumns+" FROM decks WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("deck %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return &deck, nil
}

// GetVisible returns a deck only when the user may see it
func (r *DeckRepository) GetVisible(ctx context.Context, userID string, id int64) (*models.Deck, error) {
	deck, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deck.VisibleTo(userID) {
		return nil, fmt.Errorf("deck %d: %w", id, models.ErrNotFound)
	}
	return deck, nil
}

// ListVisible returns default decks plus the decks owned by the user
func (r *DeckRepository) ListVisible(ctx context.Context, userID string) ([]models.Deck, error) {
	decks := []models.Deck{}
	query := "SELECT " + deckColumns + " FROM decks WHERE is_default = ? OR owner_id = ? ORDER BY title, id"
	if err := r.db.SelectContext(ctx, &decks, r.db.Rebind(query), true, userID); err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// GetAll returns all decks
func (r *DeckRepository) GetAll(ctx context.Context) ([]models.Deck, error) {
	decks := []models.Deck{}
	if err := r.db.SelectContext(ctx, &decks, "SELECT "+deckColumns+" FROM decks ORDER BY title, id"); err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}
	return decks, nil
}

// Delete removes a deck; its cards, progress records and learning logs cascade
func (r *DeckRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM decks WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("deck %d: %w", id, models.ErrNotFound)
	}
	return nil
}
