package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

// Availability is the derived state of one slot. Capacity zero is a valid,
// always-closed slot.
type Availability struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Occupied int    `json:"occupied"`
	Capacity int    `json:"capacity"`
	Open     bool   `json:"open"`
}

func NewAvailability(slot timegrid.Slot, occupied, capacity int) Availability {
	return Availability{
		Date:     slot.Date,
		Time:     slot.Time,
		Occupied: occupied,
		Capacity: capacity,
		Open:     occupied < capacity,
	}
}

func (a Availability) Remaining() int {
	if a.Occupied >= a.Capacity {
		return 0
	}
	return a.Capacity - a.Occupied
}

// EndTimeFor derives the end of an appointment from its start and the
// durations of its services.
func EndTimeFor(start string, services []models.Service) (string, error) {
	if len(services) == 0 {
		return "", fmt.Errorf("at least one service is required")
	}
	total := 0
	for _, s := range services {
		total += s.DurationMin
	}
	return timegrid.EndTime(start, total)
}
