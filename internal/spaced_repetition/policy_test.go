package spaced_repetition

import (
	"errors"
	"testing"
	"time"

	"github.com/example/cardlearn/pkg/models"
)

var today = models.NewDate(2025, time.June, 15)

func record(stage models.Stage, ease models.Ease, priority int) models.ProgressRecord {
	return models.ProgressRecord{
		ID:       7,
		UserID:   "u1",
		CardID:   42,
		Stage:    stage,
		Due:      today,
		Ease:     ease,
		Priority: priority,
	}
}

func mustApply(t *testing.T, p models.ProgressRecord, a Action) Result {
	t.Helper()
	res, err := Apply(p, a, today)
	if err != nil {
		t.Fatalf("Apply(%s): %v", a, err)
	}
	return res
}

func TestParseAction(t *testing.T) {
	cases := map[string]Action{"again": Again, "hard": Hard, "good": Good}
	for in, want := range cases {
		got, err := ParseAction(in)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseAction(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"skip", "", "Good", "easy"} {
		if _, err := ParseAction(bad); !errors.Is(err, ErrInvalidAction) {
			t.Errorf("ParseAction(%q) err = %v, want ErrInvalidAction", bad, err)
		}
	}
}

func TestApplyTable(t *testing.T) {
	tests := []struct {
		name         string
		in           models.ProgressRecord
		action       Action
		wantStage    models.Stage
		wantEase     models.Ease
		wantDays     int
		wantPriority int
		wantAdvanced bool
	}{
		{"again new", record(models.StageNew, 185, 1), Again, models.StageNew, 185, 0, 2, false},
		{"hard new", record(models.StageNew, 185, 1), Hard, models.StageNew, 185, 0, 3, false},
		{"good new stays new at 2.00", record(models.StageNew, 185, 1), Good, models.StageNew, 200, 0, 4, false},
		{"good new graduates at 2.01", record(models.StageNew, 186, 1), Good, models.StageLearning, 201, 2, 1, true},
		{"again learning floors ease", record(models.StageLearning, 200, 3), Again, models.StageLearning, 185, 0, 4, false},
		{"hard learning", record(models.StageLearning, 250, 3), Hard, models.StageLearning, 235, 0, 5, false},
		{"good learning", record(models.StageLearning, 185, 2), Good, models.StageLearning, 200, 4, 1, true},
		{"good learning to review", record(models.StageLearning, 290, 2), Good, models.StageReview, 305, 6, 1, true},
		{"good learning at threshold", record(models.StageLearning, 285, 2), Good, models.StageLearning, 300, 6, 1, true},
		{"good review", record(models.StageReview, 200, 5), Good, models.StageReview, 225, 6, 1, true},
		{"again review", record(models.StageReview, 300, 1), Again, models.StageReview, 275, 0, 2, false},
		{"good relearning", record(models.StageRelearning, 185, 1), Good, models.StageRelearning, 200, 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustApply(t, tt.in, tt.action)
			got := res.Record
			if got.Stage != tt.wantStage {
				t.Errorf("stage = %s, want %s", got.Stage, tt.wantStage)
			}
			if got.Ease != tt.wantEase {
				t.Errorf("ease = %s, want %s", got.Ease, tt.wantEase)
			}
			if want := today.AddDays(tt.wantDays); !got.Due.Equal(want) {
				t.Errorf("due = %s, want %s", got.Due, want)
			}
			if got.Priority != tt.wantPriority {
				t.Errorf("priority = %d, want %d", got.Priority, tt.wantPriority)
			}
			if res.Advanced != tt.wantAdvanced {
				t.Errorf("advanced = %v, want %v", res.Advanced, tt.wantAdvanced)
			}
			if got.ID != tt.in.ID || got.UserID != tt.in.UserID || got.CardID != tt.in.CardID {
				t.Errorf("identity changed: %+v", got)
			}
		})
	}
}

func TestEaseNeverBelowDefault(t *testing.T) {
	stages := []models.Stage{models.StageNew, models.StageLearning, models.StageReview, models.StageRelearning}
	for _, stage := range stages {
		for _, a := range Actions {
			for ease := models.DefaultEase; ease <= 400; ease += 5 {
				res := mustApply(t, record(stage, ease, 1), a)
				if res.Record.Ease < models.DefaultEase {
					t.Fatalf("%s/%s from %s: ease %s below default", stage, a, ease, res.Record.Ease)
				}
			}
		}
	}
}

func TestAgainHardKeepNewCardsToday(t *testing.T) {
	// every ease a NEW card can hold: 1.85 up to 2.00
	for ease := models.DefaultEase; ease <= 200; ease++ {
		for _, a := range []Action{Again, Hard} {
			res := mustApply(t, record(models.StageNew, ease, 1), a)
			if res.Record.Stage != models.StageNew {
				t.Fatalf("%s from ease %s promoted to %s", a, ease, res.Record.Stage)
			}
			if !res.Record.Due.Equal(today) || res.Advanced {
				t.Fatalf("%s from ease %s scheduled %s", a, ease, res.Record.Due)
			}
		}
	}
}

func TestGoodThreeTimesSameDay(t *testing.T) {
	p := models.NewProgressRecord("u1", 1, today)

	first := mustApply(t, p, Good)
	if first.Record.Stage != models.StageNew || first.Record.Ease != 200 || first.Record.Priority != 4 {
		t.Fatalf("first good: %+v", first.Record)
	}
	if !first.Record.Due.Equal(today) || first.Advanced {
		t.Fatalf("first good should stay due today, got %s", first.Record.Due)
	}

	second := mustApply(t, first.Record, Good)
	if second.Record.Stage != models.StageLearning || second.Interval != 1 {
		t.Fatalf("second good: stage %s interval %d", second.Record.Stage, second.Interval)
	}
	if second.Record.Ease != 215 || !second.Record.Due.Equal(today.AddDays(2)) || second.Record.Priority != 1 {
		t.Fatalf("second good: %+v", second.Record)
	}

	third := mustApply(t, second.Record, Good)
	if third.Record.Stage != models.StageLearning || third.Record.Ease != 230 {
		t.Fatalf("third good: %+v", third.Record)
	}
	if !third.Record.Due.Equal(today.AddDays(4)) {
		t.Fatalf("third good due = %s", third.Record.Due)
	}
}

func TestHandleActionInvalidLeavesRecord(t *testing.T) {
	p := record(models.StageLearning, 230, 5)
	before := p
	_, err := HandleAction(p, "skip", today)
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("err = %v, want ErrInvalidAction", err)
	}
	if p != before {
		t.Fatalf("record mutated: %+v", p)
	}
	if _, err := Apply(p, Action(99), today); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("Apply(99) err = %v", err)
	}
}

func TestPriorityAccumulatesWithinDay(t *testing.T) {
	p := record(models.StageNew, 185, 1)
	for i, a := range []Action{Again, Hard, Again} {
		p = mustApply(t, p, a).Record
		if !p.Due.Equal(today) {
			t.Fatalf("step %d moved due to %s", i, p.Due)
		}
	}
	if p.Priority != 1+1+2+1 {
		t.Fatalf("priority = %d, want 5", p.Priority)
	}
}

func TestActionValid(t *testing.T) {
	for _, a := range Actions {
		if !a.Valid() {
			t.Errorf("%s not valid", a)
		}
	}
	for _, a := range []Action{0, Action(4), Action(-1)} {
		if a.Valid() {
			t.Errorf("Action(%d) valid", int(a))
		}
	}
}
