package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/cardlearn/pkg/models"
)

// ProgressRepository handles database operations for per-user card progress
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

const progressColumns = "p.id, p.user_id, p.card_id, p.stage, p.due, p.ease, p.priority"

// getOrCreate inserts rec unless (user_id, card_id) already exists. A concurrent
// insert of the same pair is absorbed by the unique constraint.
func getOrCreate(ctx context.Context, ext sqlx.ExtContext, rec models.ProgressRecord) (bool, error) {
	query := `
		INSERT INTO card_progress (user_id, card_id, stage, due, ease, priority)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, card_id) DO NOTHING
	`
	result, err := ext.ExecContext(ctx, ext.Rebind(query),
		rec.UserID, rec.CardID, rec.Stage, rec.Due, rec.Ease, rec.Priority)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// GetOrCreate returns the user's record for a card, creating a default one when absent
func (r *ProgressRepository) GetOrCreate(ctx context.Context, userID string, cardID int64, today models.Date) (*models.ProgressRecord, bool, error) {
	created, err := getOrCreate(ctx, r.db, models.NewProgressRecord(userID, cardID, today))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create progress: %w", err)
	}
	var rec models.ProgressRecord
	query := "SELECT " + progressColumns + " FROM card_progress p WHERE p.user_id = ? AND p.card_id = ?"
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(query), userID, cardID); err != nil {
		return nil, false, fmt.Errorf("failed to get progress: %w", err)
	}
	return &rec, created, nil
}

// EnsureForDeck creates a default record for every card of the deck the user has
// no record for yet. Existing records are left as they are. It returns how many were created.
func (r *ProgressRepository) EnsureForDeck(ctx context.Context, userID string, deckID int64, today models.Date) (int, error) {
	created := 0
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var cardIDs []int64
		if err := tx.SelectContext(ctx, &cardIDs, tx.Rebind("SELECT id FROM cards WHERE deck_id = ? ORDER BY id"), deckID); err != nil {
			return fmt.Errorf("failed to get deck cards: %w", err)
		}
		for _, cardID := range cardIDs {
			ok, err := getOrCreate(ctx, tx, models.NewProgressRecord(userID, cardID, today))
			if err != nil {
				return fmt.Errorf("failed to create progress for card %d: %w", cardID, err)
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// PopCard returns the user's next due record in the deck: lowest priority first.
// It returns nil, nil when nothing is due.
func (r *ProgressRepository) PopCard(ctx context.Context, userID string, deckID int64, today models.Date) (*models.ProgressRecord, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND c.deck_id = ? AND p.due <= ?
		ORDER BY p.priority ASC, p.id ASC
		LIMIT 1
	`
	var rec models.ProgressRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(query), userID, deckID, today)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop card: %w", err)
	}
	return &rec, nil
}

// Get returns the user's record for a card within a deck
func (r *ProgressRepository) Get(ctx context.Context, key models.ProgressKey) (*models.ProgressRecord, error) {
	return getScoped(ctx, r.db, key, false)
}

// GetByDeck returns all of the user's records in a deck
func (r *ProgressRepository) GetByDeck(ctx context.Context, userID string, deckID int64) ([]models.ProgressRecord, error) {
	records := []models.ProgressRecord{}
	query := `
		SELECT ` + progressColumns + `
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND c.deck_id = ?
		ORDER BY p.id
	`
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), userID, deckID); err != nil {
		return nil, fmt.Errorf("failed to get progress by deck: %w", err)
	}
	return records, nil
}

func getScoped(ctx context.Context, ext sqlx.ExtContext, key models.ProgressKey, lock bool) (*models.ProgressRecord, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND p.card_id = ? AND c.deck_id = ?
	`
	if lock && isPostgres(ext) {
		query += " FOR UPDATE OF p"
	}
	var rec models.ProgressRecord
	err := sqlx.GetContext(ctx, ext, &rec, ext.Rebind(query), key.UserID, key.CardID, key.DeckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress for card %d: %w", key.CardID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return &rec, nil
}

// Modify loads the record for key under a row lock, passes it to fn and writes back the
// record fn returns. When fn reports the card advanced, a learning log entry stamped at is
// appended in the same transaction. Nothing is written when fn fails.
func (r *ProgressRepository) Modify(ctx context.Context, key models.ProgressKey, at time.Time, fn func(models.ProgressRecord) (models.ProgressRecord, bool, error)) (*models.ProgressRecord, error) {
	var out models.ProgressRecord
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getScoped(ctx, tx, key, true)
		if err != nil {
			return err
		}
		next, advanced, err := fn(*current)
		if err != nil {
			return err
		}
		query := `
			UPDATE card_progress SET
				stage = ?,
				due = ?,
				ease = ?,
				priority = ?
			WHERE id = ?
		`
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), next.Stage, next.Due, next.Ease, next.Priority, current.ID); err != nil {
			return fmt.Errorf("failed to update user progress: %w", err)
		}
		if advanced {
			entry := models.LearningLog{UserID: current.UserID, CardID: current.CardID, CreatedAt: at}
			if err := appendLearningLog(ctx, tx, &entry); err != nil {
				return err
			}
		}
		out = next
		out.ID = current.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
