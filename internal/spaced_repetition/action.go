package spaced_repetition

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAction is returned for an outcome other than again, hard or good.
var ErrInvalidAction = errors.New("invalid action")

// Action is the outcome a user reports after seeing a card
type Action int

const (
	Again Action = iota + 1
	Hard
	Good
)

var actionNames = map[Action]string{
	Again: "again",
	Hard:  "hard",
	Good:  "good",
}

// Actions lists the recognized outcomes in presentation order.
var Actions = []Action{Again, Hard, Good}

// ParseAction maps the wire name of an action to its value.
func ParseAction(s string) (Action, error) {
	switch strings.TrimSpace(s) {
	case "again":
		return Again, nil
	case "hard":
		return Hard, nil
	case "good":
		return Good, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Valid reports whether a is a recognized outcome.
func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}
