package models

import (
	"fmt"
	"strings"
)

// Stage is the coarse learning phase of a card for a user
type Stage int

const (
	StageNew Stage = iota
	StageLearning
	StageReview
	// StageRelearning is reserved; no transition produces it.
	StageRelearning
)

var stageNames = [...]string{
	StageNew:        "NEW",
	StageLearning:   "LEARNING",
	StageReview:     "REVIEW",
	StageRelearning: "RELEARNING",
}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	return s >= StageNew && s <= StageRelearning
}

func (s Stage) String() string {
	if s.Valid() {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage: %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for i, n := range stageNames {
		if n == name {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("invalid stage: %q", text)
}

// DefaultPriority is the priority of a fresh record and of any record whose due date moved past today.
const DefaultPriority = 1

// ProgressRecord tracks one user's learning state for one card.
// The (UserID, CardID) pair is unique.
type ProgressRecord struct {
	ID       int64  `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	CardID   int64  `json:"card_id" db:"card_id"`
	Stage    Stage  `json:"stage" db:"stage"`
	Due      Date   `json:"due" db:"due"`
	Ease     Ease   `json:"ease" db:"ease"`
	Priority int    `json:"priority" db:"priority"`
}

// NewProgressRecord returns the default record a user starts a card with.
func NewProgressRecord(userID string, cardID int64, today Date) ProgressRecord {
	return ProgressRecord{
		UserID:   userID,
		CardID:   cardID,
		Stage:    StageNew,
		Due:      today,
		Ease:     DefaultEase,
		Priority: DefaultPriority,
	}
}

// IsDue reports whether the record may be presented on the given day.
func (p ProgressRecord) IsDue(today Date) bool {
	return !p.Due.After(today)
}

// ProgressKey addresses a user's record for a card, scoped to the deck being studied
type ProgressKey struct {
	UserID string
	DeckID int64
	CardID int64
}
