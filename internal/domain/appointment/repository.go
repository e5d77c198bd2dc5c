package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Filter narrows ListAppointments. Zero values are ignored.
type Filter struct {
	Date       string
	From       string
	To         string
	StaffID    *uint
	Status     Status
	Unassigned bool
}

// Reader holds the snapshot queries. They may run outside a transaction and
// must not be the only gate for a write.
type Reader interface {
	// -------- Appointment --------
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)

	ListAppointments(ctx context.Context, f Filter) ([]models.Appointment, error)

	// -------- Slot --------
	CountActiveInSlot(ctx context.Context, date, clock string) (int, error)

	CountActiveBySlot(ctx context.Context, date string) (map[string]int, error)

	// -------- Staff directory --------
	CountActiveStaff(ctx context.Context) (int, error)

	GetStaff(ctx context.Context, id uint) (*models.Staff, error)

	// -------- Service catalog --------
	GetServicesByName(ctx context.Context, names []string) ([]models.Service, error)
}

// Tx is the write side. Every mutation runs through it so the capacity and
// conflict checks are re-evaluated under lock.
type Tx interface {
	Reader

	// LockSlot serializes writers on one (date, time) until the transaction
	// ends. Take it before any row lock.
	LockSlot(ctx context.Context, date, clock string) error

	GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error)

	CreateAppointment(ctx context.Context, ap *models.Appointment) error

	UpdateAppointment(ctx context.Context, ap *models.Appointment) error

	ListStaffAppointmentsInSlot(ctx context.Context, staffID uint, date, clock string, excludeID uint) ([]models.Appointment, error)
}

type Repository interface {
	Reader

	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
