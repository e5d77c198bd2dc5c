package timegrid

import "fmt"

// TimeFormatError reports a clock value that does not match the expected grammar.
type TimeFormatError struct {
	Input    string
	Expected string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time %q: expected %s", e.Input, e.Expected)
}

func (e *TimeFormatError) Code() string { return "invalid_time_format" }

// InvalidSlotError reports a malformed or off-grid (date, time) pair.
type InvalidSlotError struct {
	Date   string
	Time   string
	Reason string
}

func (e *InvalidSlotError) Error() string {
	switch {
	case e.Date != "" && e.Time != "":
		return fmt.Sprintf("invalid slot %s %s: %s", e.Date, e.Time, e.Reason)
	case e.Date != "":
		return fmt.Sprintf("invalid slot date %s: %s", e.Date, e.Reason)
	case e.Time != "":
		return fmt.Sprintf("invalid slot time %s: %s", e.Time, e.Reason)
	}
	return "invalid slot: " + e.Reason
}

func (e *InvalidSlotError) Code() string { return "invalid_slot" }
