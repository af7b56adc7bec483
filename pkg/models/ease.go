package models

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Ease is a two-decimal factor stored as hundredths, so 1.85 is Ease(185).
// Fixed point keeps threshold checks such as "ease > 2" exact.
type Ease int

const (
	// DefaultEase is both the starting ease and its floor.
	DefaultEase Ease = 185
	// EaseOne is the fixed-point representation of 1.00.
	EaseOne Ease = 100
)

// NewEase converts a float to the nearest hundredth.
func NewEase(f float64) Ease {
	return Ease(math.Round(f * 100))
}

// Floor returns e, raised to min when below it.
func (e Ease) Floor(min Ease) Ease {
	if e < min {
		return min
	}
	return e
}

// Days returns floor(interval * e) for a non-negative interval.
func (e Ease) Days(interval int) int {
	if interval <= 0 || e <= 0 {
		return 0
	}
	return interval * int(e) / int(EaseOne)
}

func (e Ease) String() string {
	sign := ""
	v := int(e)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseEase parses a decimal string such as "1.85".
func ParseEase(s string) (Ease, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ease %q: %w", s, err)
	}
	return NewEase(f), nil
}

// MarshalJSON encodes the ease as a JSON number with two decimals.
func (e Ease) MarshalJSON() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal.
func (e *Ease) UnmarshalJSON(data []byte) error {
	v, err := ParseEase(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Value implements driver.Valuer. The decimal string suits NUMERIC columns on both drivers.
func (e Ease) Value() (driver.Value, error) {
	return e.String(), nil
}

// Scan implements sql.Scanner.
func (e *Ease) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*e = Ease(v * 100)
	case float64:
		*e = NewEase(v)
	case []byte:
		return e.parseInto(string(v))
	case string:
		return e.parseInto(v)
	case nil:
		*e = DefaultEase
	default:
		return fmt.Errorf("cannot scan %T into Ease", src)
	}
	return nil
}

func (e *Ease) parseInto(s string) error {
	v, err := ParseEase(s)
	if err != nil {
		return err
	}
	*e = v
	return nil
}
