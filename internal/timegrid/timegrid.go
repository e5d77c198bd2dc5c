// Package timegrid holds the pure date/time helpers behind the booking grid:
// strict clock parsing in 12h and 24h notation, end-time arithmetic and the
// discrete (date, time) slot grid.
package timegrid

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	minutesPerDay = 24 * 60
)

var (
	clock24 = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
	clock12 = regexp.MustCompile(`^(1[0-2]|[1-9]):([0-5][0-9]) (AM|PM)$`)
)

// ParseClock parses a strict HH:MM value into minutes since midnight.
func ParseClock(s string) (int, error) {
	m := clock24.FindStringSubmatch(s)
	if m == nil {
		return 0, &TimeFormatError{Input: s, Expected: "HH:MM"}
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// To24Hour converts "H:MM AM|PM" into "HH:MM".
func To24Hour(s string) (string, error) {
	m := clock12.FindStringSubmatch(s)
	if m == nil {
		return "", &TimeFormatError{Input: s, Expected: "H:MM AM|PM"}
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])

	h %= 12
	if m[3] == "PM" {
		h += 12
	}
	return FormatClock(h*60 + min), nil
}

// To12Hour converts "HH:MM" into "H:MM AM|PM".
func To12Hour(s string) (string, error) {
	total, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	h, min := total/60, total%60

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, min, suffix), nil
}

// NormalizeClock accepts either grammar and returns HH:MM.
func NormalizeClock(s string) (string, error) {
	if clock24.MatchString(s) {
		return s, nil
	}
	if clock12.MatchString(s) {
		return To24Hour(s)
	}
	return "", &TimeFormatError{Input: s, Expected: "HH:MM or H:MM AM|PM"}
}

// EndTime adds durationMinutes to start. Appointments never cross midnight,
// so an end at or past 24:00 is rejected.
func EndTime(start string, durationMinutes int) (string, error) {
	begin, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	if durationMinutes <= 0 {
		return "", &InvalidSlotError{Time: start, Reason: "duration must be positive"}
	}

	end := begin + durationMinutes
	if end >= minutesPerDay {
		return "", &InvalidSlotError{
			Time:   start,
			Reason: fmt.Sprintf("a %d minute appointment starting at %s would cross midnight", durationMinutes, start),
		}
	}
	return FormatClock(end), nil
}

// ParseDate parses a strict YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil || d.Format(DateLayout) != s {
		return time.Time{}, &InvalidSlotError{Date: s, Reason: "date must be a calendar date in YYYY-MM-DD format"}
	}
	return d, nil
}
