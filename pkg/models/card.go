package models

import "time"

// Card represents a word to be learned together with its translation
type Card struct {
	ID          int64     `json:"id" db:"id"`
	DeckID      int64     `json:"deck" db:"deck_id"`
	Word        string    `json:"word" db:"word"`
	Translation string    `json:"translation" db:"translation"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
