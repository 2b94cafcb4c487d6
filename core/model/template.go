package model

import (
	"fmt"
	"time"
)

// Weekday numbers days Monday=1 through Sunday=7, matching the position
// convention of operating-day patterns.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf returns the Weekday of a calendar date.
func WeekdayOf(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

func (d Weekday) String() string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if d < Monday || d > Sunday {
		return "unknown"
	}
	return names[d-1]
}

// NotOperating marks a non-operating position in a DayPattern.
const NotOperating = 'X'

// DayPattern is a 7-character operating-day string. Position i (1-based)
// holds the digit i when the flight operates on weekday i, or 'X' when it
// does not. "1234567" is daily, "123456X" skips Sunday.
type DayPattern string

// Validate reports ErrInvalidPattern unless the pattern is exactly seven
// characters, each either 'X' or the digit of its own position.
func (p DayPattern) Validate() error {
	if len(p) != 7 {
		return fmt.Errorf("%w: %q must be 7 characters", ErrInvalidPattern, string(p))
	}
	for i := 0; i < 7; i++ {
		c := p[i]
		if c == NotOperating {
			continue
		}
		if c < '1' || c > '7' {
			return fmt.Errorf("%w: %q has invalid character %q", ErrInvalidPattern, string(p), c)
		}
	}
	return nil
}

// Operates reports whether the pattern marks weekday d as operating. A
// position is operating only when it holds its own digit; anything else,
// including a digit in the wrong position, means non-operating.
func (p DayPattern) Operates(d Weekday) bool {
	if d < Monday || d > Sunday || len(p) != 7 {
		return false
	}
	return p[d-1] == byte('0'+d)
}

// Frequency returns the number of operating positions.
func (p DayPattern) Frequency() int {
	n := 0
	for d := Monday; d <= Sunday; d++ {
		if p.Operates(d) {
			n++
		}
	}
	return n
}

// FlightTemplate describes one recurring flight within a schedule.
// Templates are immutable once published; changes arrive as explicit
// change events through the ingestion boundary.
type FlightTemplate struct {
	ID               string
	Carrier          string // two-letter carrier code
	FlightNumber     string
	Origin           string // IATA airport code
	Destination      string
	DepartureTime    TimeOfDay // local at origin
	ArrivalTime      TimeOfDay // local at destination
	ArrivalDayOffset int       // 0 same day, +1/+2 for overnight arrivals
	Days             DayPattern
	EffectiveFrom    time.Time // UTC midnight
	EffectiveTo      time.Time
	AircraftType     string // IATA type code, e.g. "320", "773"
	Tail             string // assigned registration, optional
	FrequencyPerWeek int
	Seats            int // configured capacity, 0 when unknown
	CrewBase         string
}

// Validate rejects templates that must never enter expansion.
func (t FlightTemplate) Validate() error {
	if err := t.Days.Validate(); err != nil {
		return err
	}
	if t.EffectiveFrom.After(t.EffectiveTo) {
		return fmt.Errorf("%w: %s effective %s > %s", ErrInvalidDateRange,
			t.FlightNumber, t.EffectiveFrom.Format(DateLayout), t.EffectiveTo.Format(DateLayout))
	}
	if t.ArrivalDayOffset < 0 || t.ArrivalDayOffset > 2 {
		return fmt.Errorf("%w: %s arrival day offset %d out of range", ErrInvalidDateRange,
			t.FlightNumber, t.ArrivalDayOffset)
	}
	return nil
}

// Designator returns the carrier-qualified flight number, e.g. "DL204".
func (t FlightTemplate) Designator() string {
	return t.Carrier + t.FlightNumber
}
