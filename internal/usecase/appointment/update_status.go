package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

type UpdateStatusInput struct {
	Actor         domain.Actor
	AppointmentID uint
	Status        string
	Reason        string
}

// UpdateStatus drives the appointment state machine. The public
// cancellation flow goes through it with a customer actor.
type UpdateStatus struct {
	deps Deps
}

func NewUpdateStatus(deps Deps) *UpdateStatus {
	return &UpdateStatus{deps: deps.withDefaults()}
}

func (uc *UpdateStatus) Execute(ctx context.Context, in UpdateStatusInput) (*models.Appointment, error) {
	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_status")
	}

	// (date, time) never changes after booking, so the snapshot is enough
	// to find which slot lock to take.
	snapshot, err := uc.deps.Repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	now := uc.deps.Clock.Now()

	var (
		ap   *models.Appointment
		from domain.Status
	)
	err = uc.deps.Repo.Transaction(ctx, func(tx domain.Tx) error {
		if err := tx.LockSlot(ctx, snapshot.Date, snapshot.Time); err != nil {
			return err
		}

		current, err := tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		from = domain.Status(current.Status)

		if err := domain.Transition(current, to, in.Actor, now, in.Reason); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, current); err != nil {
			return err
		}
		ap = current
		return nil
	})

	if err != nil {
		uc.deps.Metrics.Transition(string(to), errorCode(err))
		return nil, err
	}

	if to == domain.StatusCancelled {
		uc.deps.invalidate(ctx, ap.Date, ap.Time)
	}
	uc.deps.Metrics.Transition(string(to), "ok")
	uc.deps.record(ctx, in.Actor, audit.ActionStatusChanged, ap.ID, map[string]any{
		"from":   from,
		"to":     to,
		"reason": in.Reason,
	})

	uc.deps.Log.Info("appointment status changed",
		zap.Uint("appointment_id", ap.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return ap, nil
}
