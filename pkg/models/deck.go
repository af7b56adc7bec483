package models

import "time"

// Deck is a named collection of cards. A default deck is usable by every user,
// otherwise only its owner sees it.
type Deck struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	IsDefault bool      `json:"default" db:"is_default"`
	OwnerID   *string   `json:"owner_id,omitempty" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// VisibleTo reports whether userID may browse and enroll into the deck.
func (d Deck) VisibleTo(userID string) bool {
	if d.IsDefault {
		return true
	}
	return d.OwnerID != nil && *d.OwnerID == userID
}
