package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves ap to the requested status after checking the transition
// table, the actor's permissions and the temporal preconditions. now must be
// in the business timezone. Nothing is mutated when an error is returned.
func Transition(ap *models.Appointment, to Status, actor Actor, now time.Time, reason string) error {
	from := Status(ap.Status)

	if !CanTransition(from, to) {
		e := &InvalidTransitionError{AppointmentID: ap.ID, From: from, To: to}
		if from == StatusCompleted {
			e.Cause = &AlreadyCompletedError{AppointmentID: ap.ID}
		}
		return e
	}

	switch to {
	case StatusConfirmed:
		if !actor.IsAdmin() && !actor.IsAssignedTo(ap.StaffID) {
			return &NotAuthorizedError{Action: "confirm appointment", RequiredRole: "assigned staff or admin"}
		}

	case StatusCompleted:
		if !actor.IsAssignedTo(ap.StaffID) {
			return &NotAuthorizedError{Action: "complete appointment", RequiredRole: "assigned staff"}
		}
		start := timegrid.Slot{Date: ap.Date, Time: ap.Time}.Start(now.Location())
		if start.After(now) {
			return &FutureAppointmentError{AppointmentID: ap.ID, Date: ap.Date, Time: ap.Time, Now: now}
		}

	case StatusCancelled:
		if !actor.IsAdmin() && !actor.IsAssignedTo(ap.StaffID) && !isBookingCustomer(actor, ap) {
			return &NotAuthorizedError{Action: "cancel appointment", RequiredRole: "assigned staff, booking customer or admin"}
		}
	}

	ap.Status = string(to)
	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
		if reason = strings.TrimSpace(reason); reason != "" {
			AppendNote(ap, now, fmt.Sprintf("cancelled by %s: %s", actor.Role, reason))
		} else {
			AppendNote(ap, now, fmt.Sprintf("cancelled by %s", actor.Role))
		}
	case StatusCompleted:
		ap.CompletedAt = &now
	}
	return nil
}

// AppendNote adds a timestamped line; existing notes are never rewritten.
func AppendNote(ap *models.Appointment, now time.Time, text string) {
	line := fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04"), text)
	if ap.Notes == "" {
		ap.Notes = line
		return
	}
	ap.Notes += "\n" + line
}

func isBookingCustomer(actor Actor, ap *models.Appointment) bool {
	if actor.Role != RoleCustomer {
		return false
	}
	given := NormalizePhone(actor.Phone)
	return given != "" && given == NormalizePhone(ap.CustomerPhone)
}

func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
