package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEaseScan(t *testing.T) {
	cases := []struct {
		src  interface{}
		want Ease
	}{
		{int64(2), 200},
		{1.85, 185},
		{2.15, 215},
		{[]byte("2.30"), 230},
		{"1.85", 185},
		{nil, DefaultEase},
	}
	for _, c := range cases {
		var e Ease
		if err := e.Scan(c.src); err != nil {
			t.Fatalf("Scan(%v): %v", c.src, err)
		}
		if e != c.want {
			t.Errorf("Scan(%v) = %s, want %s", c.src, e, c.want)
		}
	}
	var e Ease
	if err := e.Scan(true); err == nil {
		t.Fatal("Scan(bool) should fail")
	}
}

func TestEaseDays(t *testing.T) {
	if got := Ease(225).Days(3); got != 6 {
		t.Errorf("3*2.25 floored = %d, want 6", got)
	}
	if got := Ease(200).Days(0); got != 0 {
		t.Errorf("0*2.00 = %d, want 0", got)
	}
	if got := Ease(215).Days(1); got != 2 {
		t.Errorf("1*2.15 floored = %d, want 2", got)
	}
	if s := Ease(185).String(); s != "1.85" {
		t.Errorf("String() = %q", s)
	}
}

func TestDateScanAndJSON(t *testing.T) {
	want := NewDate(2025, time.June, 15)

	var d Date
	if err := d.Scan(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)); err != nil || !d.Equal(want) {
		t.Fatalf("Scan(time) = %s, %v", d, err)
	}
	if err := d.Scan("2025-06-15T00:00:00Z"); err != nil || !d.Equal(want) {
		t.Fatalf("Scan(string) = %s, %v", d, err)
	}

	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2025-06-15"` {
		t.Fatalf("json = %s", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil || !back.Equal(want) {
		t.Fatalf("unmarshal = %s, %v", back, err)
	}
	if got := want.AddDays(6).DaysSince(want); got != 6 {
		t.Fatalf("DaysSince = %d", got)
	}
}

func TestDeckVisibleTo(t *testing.T) {
	owner := "u1"
	owned := Deck{OwnerID: &owner}
	if !owned.VisibleTo("u1") || owned.VisibleTo("u2") {
		t.Fatal("owned deck visibility wrong")
	}
	if !(Deck{IsDefault: true}).VisibleTo("anyone") {
		t.Fatal("default deck should be visible")
	}
	if (Deck{}).VisibleTo("u1") {
		t.Fatal("ownerless non-default deck should be hidden")
	}
}

func TestStageText(t *testing.T) {
	var s Stage
	if err := s.UnmarshalText([]byte("review")); err != nil || s != StageReview {
		t.Fatalf("UnmarshalText = %s, %v", s, err)
	}
	if _, err := Stage(9).MarshalText(); err == nil {
		t.Fatal("MarshalText(9) should fail")
	}
}

func TestProgressRecordIsDue(t *testing.T) {
	today := NewDate(2025, time.June, 15)
	rec := NewProgressRecord("u1", 1, today)
	if !rec.IsDue(today) {
		t.Fatal("new record not due on its creation day")
	}
	if !rec.IsDue(today.AddDays(3)) {
		t.Fatal("overdue record not due")
	}
	rec.Due = today.AddDays(1)
	if rec.IsDue(today) {
		t.Fatal("future record reported due")
	}
}
