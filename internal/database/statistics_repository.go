package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/cardlearn/pkg/models"
)

// StatisticsRepository runs read-only aggregate queries over progress data
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// DeckStatistics returns the user's progress summary for a deck. Learning log entries
// are counted within [dayStart, dayStart+24h).
func (r *StatisticsRepository) DeckStatistics(ctx context.Context, userID string, deckID int64, today models.Date, dayStart time.Time) (*models.DeckStatistics, error) {
	stats := &models.DeckStatistics{
		DeckID:  deckID,
		ByStage: map[models.Stage]int{},
	}

	var rows []struct {
		Stage models.Stage `db:"stage"`
		Count int          `db:"cnt"`
	}
	query := `
		SELECT p.stage AS stage, COUNT(*) AS cnt
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND c.deck_id = ?
		GROUP BY p.stage
	`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), userID, deckID); err != nil {
		return nil, fmt.Errorf("failed to count stages: %w", err)
	}
	for _, row := range rows {
		stats.ByStage[row.Stage] = row.Count
		stats.Total += row.Count
	}

	query = `
		SELECT COUNT(*)
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND c.deck_id = ? AND p.due <= ?
	`
	if err := r.db.GetContext(ctx, &stats.DueToday, r.db.Rebind(query), userID, deckID, today); err != nil {
		return nil, fmt.Errorf("failed to count due cards: %w", err)
	}

	query = `
		SELECT COUNT(*)
		FROM learning_logs l
		JOIN cards c ON c.id = l.card_id
		WHERE l.user_id = ? AND c.deck_id = ? AND l.created_at >= ? AND l.created_at < ?
	`
	start := dayStart.UTC()
	if err := r.db.GetContext(ctx, &stats.LoggedToday, r.db.Rebind(query), userID, deckID, start, start.Add(24*time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count learning logs: %w", err)
	}

	return stats, nil
}

// DueCounts returns the number of due records per (user, deck), busiest first
func (r *StatisticsRepository) DueCounts(ctx context.Context, today models.Date) ([]models.DueCount, error) {
	counts := []models.DueCount{}
	query := `
		SELECT p.user_id AS user_id, c.deck_id AS deck_id, COUNT(*) AS due
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.due <= ?
		GROUP BY p.user_id, c.deck_id
		ORDER BY COUNT(*) DESC, p.user_id, c.deck_id
	`
	if err := r.db.SelectContext(ctx, &counts, r.db.Rebind(query), today); err != nil {
		return nil, fmt.Errorf("failed to get due counts: %w", err)
	}
	return counts, nil
}
