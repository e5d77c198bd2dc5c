package timegrid

import (
	"fmt"
	"time"
)

// Slot identifies one cell of the booking grid.
type Slot struct {
	Date string
	Time string
}

func (s Slot) Key() string {
	return s.Date + " " + s.Time
}

// Start returns the slot's start instant in loc.
func (s Slot) Start(loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(DateLayout+" "+ClockLayout, s.Key(), loc)
	return t
}

// Grid is the fixed set of bookable start times of a day: from open, every
// step minutes, strictly before close.
type Grid struct {
	open  int
	close int
	step  int
}

func NewGrid(open, close string, stepMinutes int) (Grid, error) {
	o, err := ParseClock(open)
	if err != nil {
		return Grid{}, fmt.Errorf("grid open: %w", err)
	}
	c, err := ParseClock(close)
	if err != nil {
		return Grid{}, fmt.Errorf("grid close: %w", err)
	}
	if stepMinutes <= 0 {
		return Grid{}, fmt.Errorf("grid step must be positive (got %d)", stepMinutes)
	}
	if c <= o {
		return Grid{}, fmt.Errorf("grid close %s must be after open %s", close, open)
	}
	return Grid{open: o, close: c, step: stepMinutes}, nil
}

// DefaultGrid is 09:00 to 19:00 every 30 minutes.
func DefaultGrid() Grid {
	return Grid{open: 9 * 60, close: 19 * 60, step: 30}
}

func (g Grid) Times() []string {
	out := make([]string, 0, (g.close-g.open)/g.step+1)
	for m := g.open; m < g.close; m += g.step {
		out = append(out, FormatClock(m))
	}
	return out
}

func (g Grid) Contains(clock string) bool {
	m, err := ParseClock(clock)
	if err != nil {
		return false
	}
	return m >= g.open && m < g.close && (m-g.open)%g.step == 0
}

// Validate checks a (date, time) pair against the calendar and the grid.
// Time may be given in either 24h or 12h notation; the returned slot is
// always normalized to HH:MM.
func (g Grid) Validate(date, clock string) (Slot, error) {
	if _, err := ParseDate(date, time.UTC); err != nil {
		return Slot{}, err
	}

	normalized, err := NormalizeClock(clock)
	if err != nil {
		return Slot{}, &InvalidSlotError{Date: date, Time: clock, Reason: err.Error()}
	}
	if !g.Contains(normalized) {
		return Slot{}, &InvalidSlotError{
			Date:   date,
			Time:   normalized,
			Reason: fmt.Sprintf("time is not on the %s-%s grid in %d minute steps", FormatClock(g.open), FormatClock(g.close), g.step),
		}
	}
	return Slot{Date: date, Time: normalized}, nil
}
