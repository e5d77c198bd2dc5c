package appointment

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// CheckAssign applies the assignment preconditions. noop is true when the
// appointment is already bound to staffID.
func CheckAssign(ap *models.Appointment, staffID uint, actor Actor, replace bool) (noop bool, err error) {
	switch Status(ap.Status) {
	case StatusCompleted:
		return false, &AlreadyCompletedError{AppointmentID: ap.ID}
	case StatusCancelled:
		return false, &AppointmentClosedError{AppointmentID: ap.ID, Status: StatusCancelled}
	}

	if !actor.IsAdmin() && !actor.IsStaff(staffID) {
		return false, &NotAuthorizedError{Action: "assign staff", RequiredRole: "admin or the staff member themselves"}
	}

	if ap.StaffID == nil {
		return false, nil
	}
	if *ap.StaffID == staffID {
		return true, nil
	}

	// Self-assignment only ever targets unassigned appointments; an admin
	// has to ask for the replacement explicitly.
	if !actor.IsAdmin() || !replace {
		return false, &AlreadyAssignedError{AppointmentID: ap.ID, CurrentStaffID: *ap.StaffID}
	}
	return false, nil
}

// ConflictSet returns the candidates that would double-book staffID at the
// target's slot: same staff, same (date, time), not cancelled, and not the
// target itself.
func ConflictSet(target *models.Appointment, staffID uint, candidates []models.Appointment) []ConflictSummary {
	var out []ConflictSummary
	for _, c := range candidates {
		if c.ID == target.ID || c.StaffID == nil || *c.StaffID != staffID {
			continue
		}
		if c.Date != target.Date || c.Time != target.Time || !Status(c.Status).Active() {
			continue
		}
		out = append(out, ConflictSummary{
			AppointmentID: c.ID,
			CustomerName:  c.CustomerName,
			Status:        Status(c.Status),
		})
	}
	return out
}

func ApplyAssign(ap *models.Appointment, staffID uint, actor Actor, now time.Time, overridden bool) {
	previous := ap.StaffID
	id := staffID
	ap.StaffID = &id

	text := fmt.Sprintf("staff %d assigned by %s", staffID, actor.Role)
	if previous != nil {
		text = fmt.Sprintf("staff %d replaced by staff %d by %s", *previous, staffID, actor.Role)
	}
	if overridden {
		text += " (double-booking confirmed)"
	}
	AppendNote(ap, now, text)
}

// CheckUnassign applies the unassignment preconditions. noop is true when
// the appointment has no staff bound.
func CheckUnassign(ap *models.Appointment, actor Actor, now time.Time, confirmed bool) (noop bool, err error) {
	if Status(ap.Status) == StatusCompleted {
		return false, &AlreadyCompletedError{AppointmentID: ap.ID}
	}
	if ap.StaffID == nil {
		return true, nil
	}
	if !actor.IsAdmin() && !actor.IsAssignedTo(ap.StaffID) {
		return false, &NotAuthorizedError{Action: "unassign staff", RequiredRole: "assigned staff or admin"}
	}
	if ap.Date <= now.Format("2006-01-02") && !confirmed {
		return false, &RequiresConfirmationError{AppointmentID: ap.ID, Date: ap.Date, Time: ap.Time}
	}
	return false, nil
}

// ApplyUnassign clears the staff binding. A CONFIRMED appointment goes back
// to PENDING since confirmation implies staffing.
func ApplyUnassign(ap *models.Appointment, actor Actor, now time.Time) {
	previous := *ap.StaffID
	ap.StaffID = nil
	if Status(ap.Status) == StatusConfirmed {
		ap.Status = string(StatusPending)
	}
	AppendNote(ap, now, fmt.Sprintf("staff %d unassigned by %s", previous, actor.Role))
}
