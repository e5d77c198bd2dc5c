package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type UnassignStaffInput struct {
	Actor         domain.Actor
	AppointmentID uint
	Confirm       bool
}

type UnassignStaff struct {
	deps Deps
}

func NewUnassignStaff(deps Deps) *UnassignStaff {
	return &UnassignStaff{deps: deps.withDefaults()}
}

// Execute clears the staff binding. Unassigning an unassigned appointment
// succeeds without writing anything.
func (uc *UnassignStaff) Execute(ctx context.Context, in UnassignStaffInput) (*models.Appointment, error) {
	snapshot, err := uc.deps.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := uc.deps.Clock.Now()

	var (
		ap       *models.Appointment
		previous *uint
		changed  bool
	)
	err = uc.deps.Repo.Transaction(ctx, func(tx domain.Tx) error {
		if err := tx.LockSlot(ctx, snapshot.Date, snapshot.Time); err != nil {
			return err
		}

		current, err := tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		noop, err := domain.CheckUnassign(current, in.Actor, now, in.Confirm)
		if err != nil {
			return err
		}
		ap = current
		if noop {
			changed = false
			return nil
		}

		previous = current.StaffID
		domain.ApplyUnassign(current, in.Actor, now)
		changed = true
		return tx.UpdateAppointment(ctx, current)
	})

	if err != nil {
		uc.deps.Metrics.Assignment("unassign", errorCode(err))
		return nil, err
	}

	if !changed {
		uc.deps.Metrics.Assignment("unassign", "noop")
		return ap, nil
	}

	uc.deps.Metrics.Assignment("unassign", "ok")
	uc.deps.record(ctx, in.Actor, audit.ActionStaffUnassigned, ap.ID, map[string]any{
		"staff_id": previous,
		"status":   ap.Status,
	})

	uc.deps.Log.Info("staff unassigned",
		zap.Uint("appointment_id", ap.ID),
		zap.Uintp("previous_staff_id", previous),
	)
	return ap, nil
}
