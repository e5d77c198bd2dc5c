package appointment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrStaffNotFound       = errors.New("staff not found")

	// ErrStoreUnavailable is returned once transient store failures have
	// exhausted their retries.
	ErrStoreUnavailable = errors.New("appointment store unavailable")
)

// SlotFullError means every active staff member at the slot is already booked.
type SlotFullError struct {
	Date     string
	Time     string
	Occupied int
	Capacity int
}

func (e *SlotFullError) Error() string {
	if e.Capacity == 0 {
		return fmt.Sprintf("slot %s %s is fully booked: no active staff", e.Date, e.Time)
	}
	return fmt.Sprintf("this slot already has %d of %d active staff booked", e.Occupied, e.Capacity)
}

func (e *SlotFullError) Code() string { return "slot_full" }

type ConflictSummary struct {
	AppointmentID uint   `json:"appointment_id"`
	CustomerName  string `json:"customer_name"`
	Status        Status `json:"status"`
}

// AssignmentConflictError is the double-booking decision point. It is
// recoverable: the caller repeats the request with an explicit override.
type AssignmentConflictError struct {
	AppointmentID uint
	StaffID       uint
	Date          string
	Time          string
	Conflicts     []ConflictSummary
}

func (e *AssignmentConflictError) Error() string {
	ids := make([]uint, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.AppointmentID)
	}
	return fmt.Sprintf("staff %d already has appointment(s) %v at %s %s", e.StaffID, ids, e.Date, e.Time)
}

func (e *AssignmentConflictError) Code() string { return "assignment_conflict" }

type NotAuthorizedError struct {
	Action       string
	RequiredRole string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized to %s: requires %s", e.Action, e.RequiredRole)
}

func (e *NotAuthorizedError) Code() string { return "not_authorized" }

type InvalidTransitionError struct {
	AppointmentID uint
	From          Status
	To            Status
	Cause         error
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("appointment %d cannot move from %s to %s", e.AppointmentID, e.From, e.To)
}

func (e *InvalidTransitionError) Code() string { return "invalid_transition" }

func (e *InvalidTransitionError) Unwrap() error { return e.Cause }

// FutureAppointmentError is returned when completing an appointment whose
// slot has not started yet.
type FutureAppointmentError struct {
	AppointmentID uint
	Date          string
	Time          string
	Now           time.Time
}

func (e *FutureAppointmentError) Error() string {
	return fmt.Sprintf(
		"appointment %d is scheduled for %s %s and cannot be completed before it starts (now %s)",
		e.AppointmentID, e.Date, e.Time, e.Now.Format("2006-01-02 15:04"),
	)
}

func (e *FutureAppointmentError) Code() string { return "future_appointment" }

type AlreadyCompletedError struct {
	AppointmentID uint
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("appointment %d is already completed", e.AppointmentID)
}

func (e *AlreadyCompletedError) Code() string { return "already_completed" }

// RequiresConfirmationError asks the caller to repeat an unassignment with
// confirmation because the appointment is today or in the past.
type RequiresConfirmationError struct {
	AppointmentID uint
	Date          string
	Time          string
}

func (e *RequiresConfirmationError) Error() string {
	return fmt.Sprintf("appointment %d on %s %s is today or past; unassigning requires confirmation", e.AppointmentID, e.Date, e.Time)
}

func (e *RequiresConfirmationError) Code() string { return "requires_confirmation" }

type AlreadyAssignedError struct {
	AppointmentID  uint
	CurrentStaffID uint
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("appointment %d is already assigned to staff %d", e.AppointmentID, e.CurrentStaffID)
}

func (e *AlreadyAssignedError) Code() string { return "already_assigned" }

// AppointmentClosedError rejects staffing changes on a cancelled appointment.
type AppointmentClosedError struct {
	AppointmentID uint
	Status        Status
}

func (e *AppointmentClosedError) Error() string {
	return fmt.Sprintf("appointment %d is %s", e.AppointmentID, e.Status)
}

func (e *AppointmentClosedError) Code() string { return "appointment_closed" }

// UnknownServiceError lists requested services missing from the catalog.
type UnknownServiceError struct {
	Names []string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service(s): %v", e.Names)
}

func (e *UnknownServiceError) Code() string { return "service_not_found" }
