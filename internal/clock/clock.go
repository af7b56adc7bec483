// Package clock provides the current time and the calendar day used for scheduling.
package clock

import (
	"time"

	"github.com/example/cardlearn/pkg/models"
)

// Clock is a source of the current time
type Clock interface {
	Now() time.Time
}

// Real reads the system clock in the given location.
type Real struct {
	Location *time.Location
}

func (c Real) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (c Fixed) Now() time.Time { return time.Time(c) }

// Today returns the calendar day of c.Now() in the clock's location.
func Today(c Clock) models.Date {
	return models.DateOf(c.Now())
}

// StartOfDay returns midnight of c.Now()'s day in its location.
func StartOfDay(c Clock) time.Time {
	now := c.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
