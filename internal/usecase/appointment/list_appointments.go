package appointment

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

type ListAppointmentsInput struct {
	Date       string
	From       string
	To         string
	StaffID    *uint
	Status     string
	Unassigned bool
}

type ListAppointments struct {
	deps Deps
}

func NewListAppointments(deps Deps) *ListAppointments {
	return &ListAppointments{deps: deps.withDefaults()}
}

func (uc *ListAppointments) Execute(ctx context.Context, in ListAppointmentsInput) ([]models.Appointment, error) {
	loc := uc.deps.Clock.Now().Location()
	for _, d := range []string{in.Date, in.From, in.To} {
		if d == "" {
			continue
		}
		if _, err := timegrid.ParseDate(d, loc); err != nil {
			return nil, err
		}
	}
	if in.From != "" && in.To != "" && in.From > in.To {
		return nil, httperr.ErrBusiness("invalid_period")
	}
	if in.Unassigned && in.StaffID != nil {
		return nil, httperr.ErrBusiness("invalid_filter")
	}

	f := domain.Filter{
		Date:       in.Date,
		From:       in.From,
		To:         in.To,
		StaffID:    in.StaffID,
		Unassigned: in.Unassigned,
	}
	if s := strings.TrimSpace(in.Status); s != "" {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_status")
		}
		f.Status = st
	}

	return uc.deps.Repo.ListAppointments(ctx, f)
}

type GetAppointment struct {
	deps Deps
}

func NewGetAppointment(deps Deps) *GetAppointment {
	return &GetAppointment{deps: deps.withDefaults()}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uint) (*models.Appointment, error) {
	return uc.deps.Repo.GetAppointment(ctx, id)
}
