package appointment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type AssignStaffInput struct {
	Actor         domain.Actor
	AppointmentID uint
	StaffID       uint

	// ConfirmOverride accepts a double booking surfaced by a previous
	// attempt. Replace lets an admin move an appointment to another staff
	// member.
	ConfirmOverride bool
	Replace         bool
}

type AssignStaffResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Overridden  bool                `json:"overridden"`
}

type AssignStaff struct {
	deps Deps
}

func NewAssignStaff(deps Deps) *AssignStaff {
	return &AssignStaff{deps: deps.withDefaults()}
}

func (uc *AssignStaff) Execute(ctx context.Context, in AssignStaffInput) (*AssignStaffResult, error) {
	snapshot, err := uc.deps.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := uc.deps.Clock.Now()

	var (
		result  AssignStaffResult
		changed bool
	)
	err = uc.deps.Repo.Transaction(ctx, func(tx domain.Tx) error {
		if err := tx.LockSlot(ctx, snapshot.Date, snapshot.Time); err != nil {
			return err
		}

		ap, err := tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		noop, err := domain.CheckAssign(ap, in.StaffID, in.Actor, in.Replace)
		if err != nil {
			return err
		}
		if noop {
			result = AssignStaffResult{Appointment: ap}
			changed = false
			return nil
		}

		overridden, err := bindStaff(ctx, tx, ap, in.StaffID, in.ConfirmOverride)
		if err != nil {
			return err
		}

		domain.ApplyAssign(ap, in.StaffID, in.Actor, now, overridden)
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		result = AssignStaffResult{Appointment: ap, Overridden: overridden}
		changed = true
		return nil
	})

	if err != nil {
		uc.recordFailure(ctx, in, err)
		return nil, err
	}

	if !changed {
		uc.deps.Metrics.Assignment("assign", "noop")
		return &result, nil
	}

	outcome := "ok"
	if result.Overridden {
		outcome = "overridden"
	}
	uc.deps.Metrics.Assignment("assign", outcome)
	uc.deps.record(ctx, in.Actor, audit.ActionStaffAssigned, in.AppointmentID, map[string]any{
		"staff_id":   in.StaffID,
		"overridden": result.Overridden,
	})

	uc.deps.Log.Info("staff assigned",
		zap.Uint("appointment_id", in.AppointmentID),
		zap.Uint("staff_id", in.StaffID),
		zap.Bool("overridden", result.Overridden),
	)
	return &result, nil
}

func (uc *AssignStaff) recordFailure(ctx context.Context, in AssignStaffInput, err error) {
	var conflict *domain.AssignmentConflictError
	if errors.As(err, &conflict) {
		uc.deps.Metrics.Assignment("assign", "conflict")
		uc.deps.record(ctx, in.Actor, audit.ActionAssignmentConflict, in.AppointmentID, map[string]any{
			"staff_id":  in.StaffID,
			"conflicts": conflict.Conflicts,
		})
		return
	}
	uc.deps.Metrics.Assignment("assign", errorCode(err))
}
