package models

// DeckStatistics summarizes one user's progress within a deck
type DeckStatistics struct {
	DeckID      int64         `json:"deck_id"`
	Total       int           `json:"total"`
	DueToday    int           `json:"due_today"`
	ByStage     map[Stage]int `json:"by_stage"`
	LoggedToday int           `json:"logged_today"`
}

// DueCount is the number of due progress records for a (user, deck) pair
type DueCount struct {
	UserID string `json:"user_id" db:"user_id"`
	DeckID int64  `json:"deck_id" db:"deck_id"`
	Due    int    `json:"due" db:"due"`
}
