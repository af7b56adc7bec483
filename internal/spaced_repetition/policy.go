package spaced_repetition

import (
	"fmt"

	"github.com/example/cardlearn/pkg/models"
)

// Ease adjustments, in hundredths.
const (
	againEasePenalty models.Ease = 25
	hardEasePenalty  models.Ease = 15
	goodEaseBonus    models.Ease = 15
	reviewEaseBonus  models.Ease = 25
)

// Stage thresholds, in hundredths.
const (
	// a NEW card graduates once its ease exceeds 2.00
	learningEaseThreshold models.Ease = 200
	// a LEARNING card graduates once interval*ease exceeds 6
	reviewThreshold = 600
)

// step is what an action contributes before the stage check.
type step struct {
	interval      int
	ease          models.Ease
	priorityDelta int
}

type transition func(p models.ProgressRecord) step

var transitions = map[Action]transition{
	Again: again,
	Hard:  hard,
	Good:  good,
}

func again(p models.ProgressRecord) step {
	return step{interval: 0, ease: (p.Ease - againEasePenalty).Floor(models.DefaultEase), priorityDelta: 1}
}

func hard(p models.ProgressRecord) step {
	return step{interval: 0, ease: (p.Ease - hardEasePenalty).Floor(models.DefaultEase), priorityDelta: 2}
}

func good(p models.ProgressRecord) step {
	s := step{ease: p.Ease + goodEaseBonus, priorityDelta: 3}
	switch p.Stage {
	case models.StageRelearning:
		s.interval = 1
	case models.StageLearning:
		s.interval = 2
	case models.StageReview:
		s.interval = 3
		s.ease = p.Ease + reviewEaseBonus
	default:
		s.interval = 0
	}
	return s
}

// Result is the outcome of applying an action to a record.
type Result struct {
	Record models.ProgressRecord
	// Interval is the interval in days after the stage check.
	Interval int
	// Advanced is set when the due date moved past today; a learning log entry is owed.
	Advanced bool
}

// Apply computes the next state of p for the given action. It does not touch storage;
// p is not modified.
func Apply(p models.ProgressRecord, action Action, today models.Date) (Result, error) {
	if !action.Valid() {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
	s := transitions[action](p)

	next := p
	next.Ease = s.ease
	interval := s.interval

	switch {
	case next.Stage == models.StageNew && next.Ease > learningEaseThreshold:
		next.Stage = models.StageLearning
		interval = 1
	case next.Stage == models.StageLearning && interval*int(next.Ease) > reviewThreshold:
		next.Stage = models.StageReview
	}

	next.Due = today.AddDays(next.Ease.Days(interval))

	advanced := !next.IsDue(today)
	if advanced {
		next.Priority = models.DefaultPriority
	} else {
		next.Priority = p.Priority + s.priorityDelta
	}
	return Result{Record: next, Interval: interval, Advanced: advanced}, nil
}

// HandleAction parses the raw action and applies it. The record is left untouched on error.
func HandleAction(p models.ProgressRecord, raw string, today models.Date) (Result, error) {
	action, err := ParseAction(raw)
	if err != nil {
		return Result{}, err
	}
	return Apply(p, action, today)
}
