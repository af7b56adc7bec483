package models

import "time"

// LearningLog records that a user pushed a card's due date past today.
// Rows are append-only.
type LearningLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CardID    int64     `json:"card_id" db:"card_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
