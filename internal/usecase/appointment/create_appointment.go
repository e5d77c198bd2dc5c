package appointment

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor domain.Actor

	CustomerName  string
	CustomerPhone string
	Services      []string

	Date  string
	Time  string
	Notes string

	// Optional staff binding at booking time; follows the assignment rules.
	StaffID         *uint
	ConfirmOverride bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	deps Deps
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{deps: deps.withDefaults()}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Request shape
	// --------------------------------------------------
	name := strings.TrimSpace(in.CustomerName)
	phone := strings.TrimSpace(in.CustomerPhone)
	if name == "" {
		return nil, httperr.ErrBusiness("customer_name_required")
	}
	if domain.NormalizePhone(phone) == "" {
		return nil, httperr.ErrBusiness("customer_phone_required")
	}
	if !validators.IsPhoneValid(phone) {
		return nil, httperr.ErrBusiness("invalid_phone")
	}
	if len(in.Services) == 0 {
		return nil, httperr.ErrBusiness("services_required")
	}

	// --------------------------------------------------
	// 2. Slot on the grid, not already started
	// --------------------------------------------------
	slot, err := uc.deps.Grid.Validate(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	now := uc.deps.Clock.Now()
	if slot.Start(now.Location()).Before(now) {
		return nil, &timegrid.InvalidSlotError{Date: slot.Date, Time: slot.Time, Reason: "slot start is in the past"}
	}

	// --------------------------------------------------
	// 3. Services and end time
	// --------------------------------------------------
	services, err := uc.resolveServices(ctx, in.Services)
	if err != nil {
		return nil, err
	}
	endTime, err := domain.EndTimeFor(slot.Time, services)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 4. Staff binding permission
	// --------------------------------------------------
	if in.StaffID != nil && !in.Actor.IsAdmin() && !in.Actor.IsStaff(*in.StaffID) {
		return nil, &domain.NotAuthorizedError{Action: "assign staff", RequiredRole: "admin or the staff member themselves"}
	}

	// --------------------------------------------------
	// 5. Capacity check and insert, under the slot lock
	// --------------------------------------------------
	var (
		ap         *models.Appointment
		overridden bool
	)
	err = uc.deps.Repo.Transaction(ctx, func(tx domain.Tx) error {
		if err := tx.LockSlot(ctx, slot.Date, slot.Time); err != nil {
			return err
		}

		occupied, err := tx.CountActiveInSlot(ctx, slot.Date, slot.Time)
		if err != nil {
			return err
		}
		capacity, err := tx.CountActiveStaff(ctx)
		if err != nil {
			return err
		}
		if occupied >= capacity {
			return &domain.SlotFullError{Date: slot.Date, Time: slot.Time, Occupied: occupied, Capacity: capacity}
		}

		ap = &models.Appointment{
			CustomerName:  name,
			CustomerPhone: phone,
			Services:      append([]string(nil), in.Services...),
			Date:          slot.Date,
			Time:          slot.Time,
			EndTime:       endTime,
			Status:        string(domain.InitialStatus()),
			Notes:         strings.TrimSpace(in.Notes),
		}
		overridden = false

		if in.StaffID != nil {
			if overridden, err = bindStaff(ctx, tx, ap, *in.StaffID, in.ConfirmOverride); err != nil {
				return err
			}
			domain.ApplyAssign(ap, *in.StaffID, in.Actor, now, overridden)
		}

		return tx.CreateAppointment(ctx, ap)
	})

	if err != nil {
		uc.recordFailure(ctx, in, slot, err)
		return nil, err
	}

	// --------------------------------------------------
	// 6. After commit
	// --------------------------------------------------
	uc.deps.invalidate(ctx, slot.Date, slot.Time)
	uc.deps.Metrics.Booking("created")
	uc.deps.record(ctx, in.Actor, audit.ActionAppointmentCreated, ap.ID, map[string]any{
		"date":       ap.Date,
		"time":       ap.Time,
		"services":   ap.Services,
		"staff_id":   ap.StaffID,
		"overridden": overridden,
	})

	uc.deps.Log.Info("appointment created",
		zap.Uint("appointment_id", ap.ID),
		zap.String("slot", slot.Key()),
		zap.String("actor", string(in.Actor.Role)),
	)
	return ap, nil
}

func (uc *CreateAppointment) resolveServices(ctx context.Context, names []string) ([]models.Service, error) {
	found, err := uc.deps.Repo.GetServicesByName(ctx, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.Service, len(found))
	for _, s := range found {
		byName[s.Name] = s
	}

	var (
		resolved = make([]models.Service, 0, len(names))
		missing  []string
	)
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		resolved = append(resolved, s)
	}
	if len(missing) > 0 {
		return nil, &domain.UnknownServiceError{Names: missing}
	}
	return resolved, nil
}

func (uc *CreateAppointment) recordFailure(ctx context.Context, in CreateAppointmentInput, slot timegrid.Slot, err error) {
	var full *domain.SlotFullError
	var conflict *domain.AssignmentConflictError

	switch {
	case errors.As(err, &full):
		uc.deps.Metrics.Booking("slot_full")
		uc.deps.recordNoEntity(ctx, in.Actor, audit.ActionSlotFull, map[string]any{
			"date":     slot.Date,
			"time":     slot.Time,
			"occupied": full.Occupied,
			"capacity": full.Capacity,
		})
	case errors.As(err, &conflict):
		uc.deps.Metrics.Booking("assignment_conflict")
		uc.deps.recordNoEntity(ctx, in.Actor, audit.ActionAssignmentConflict, map[string]any{
			"staff_id":  conflict.StaffID,
			"conflicts": conflict.Conflicts,
		})
	default:
		uc.deps.Metrics.Booking("error")
	}
}

// bindStaff checks the candidate inside the transaction: the staff member
// must exist and be active, and any double booking needs confirmation.
func bindStaff(ctx context.Context, tx domain.Tx, ap *models.Appointment, staffID uint, confirm bool) (overridden bool, err error) {
	staff, err := tx.GetStaff(ctx, staffID)
	if err != nil {
		return false, err
	}
	if !staff.Active {
		return false, httperr.ErrUnprocessable("staff_inactive")
	}

	others, err := tx.ListStaffAppointmentsInSlot(ctx, staffID, ap.Date, ap.Time, ap.ID)
	if err != nil {
		return false, err
	}
	conflicts := domain.ConflictSet(ap, staffID, others)
	if len(conflicts) == 0 {
		return false, nil
	}
	if !confirm {
		return false, &domain.AssignmentConflictError{
			AppointmentID: ap.ID,
			StaffID:       staffID,
			Date:          ap.Date,
			Time:          ap.Time,
			Conflicts:     conflicts,
		}
	}
	return true, nil
}
