package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/cardlearn/pkg/models"
)

// LearningLogRepository reads the append-only learning log
type LearningLogRepository struct {
	db *sqlx.DB
}

// NewLearningLogRepository creates a new repository instance
func NewLearningLogRepository(db *sqlx.DB) *LearningLogRepository {
	return &LearningLogRepository{db: db}
}

func appendLearningLog(ctx context.Context, ext sqlx.ExtContext, entry *models.LearningLog) error {
	entry.CreatedAt = entry.CreatedAt.UTC()
	id, err := insertReturningID(ctx, ext,
		"INSERT INTO learning_logs (user_id, card_id, created_at) VALUES (?, ?, ?)",
		entry.UserID, entry.CardID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append learning log: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByUser returns the user's log entries created at or after since, oldest first
func (r *LearningLogRepository) GetByUser(ctx context.Context, userID string, since time.Time) ([]models.LearningLog, error) {
	logs := []models.LearningLog{}
	query := `
		SELECT id, user_id, card_id, created_at
		FROM learning_logs
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &logs, r.db.Rebind(query), userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get learning logs: %w", err)
	}
	return logs, nil
}
