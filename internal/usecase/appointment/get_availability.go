package appointment

import (
	"context"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

// GetAvailability answers capacityFor(date, time). It is a snapshot read:
// the booking path never trusts it and recounts under lock.
type GetAvailability struct {
	deps Deps
}

func NewGetAvailability(deps Deps) *GetAvailability {
	return &GetAvailability{deps: deps.withDefaults()}
}

func (uc *GetAvailability) Execute(ctx context.Context, date, clock string) (domain.Availability, error) {
	slot, err := uc.deps.Grid.Validate(date, clock)
	if err != nil {
		return domain.Availability{}, err
	}

	cached, ok, err := uc.deps.Cache.Get(ctx, slot.Date, slot.Time)
	if err != nil {
		uc.deps.Log.Warn("availability cache read failed", zap.String("slot", slot.Key()), zap.Error(err))
	}
	if ok {
		return *cached, nil
	}

	occupied, err := uc.deps.Repo.CountActiveInSlot(ctx, slot.Date, slot.Time)
	if err != nil {
		return domain.Availability{}, err
	}
	capacity, err := uc.deps.Repo.CountActiveStaff(ctx)
	if err != nil {
		return domain.Availability{}, err
	}

	a := domain.NewAvailability(slot, occupied, capacity)
	if err := uc.deps.Cache.Set(ctx, a); err != nil {
		uc.deps.Log.Warn("availability cache write failed", zap.String("slot", slot.Key()), zap.Error(err))
	}
	return a, nil
}

// ExecuteDay returns every grid slot of date, in grid order.
func (uc *GetAvailability) ExecuteDay(ctx context.Context, date string) ([]domain.Availability, error) {
	if _, err := timegrid.ParseDate(date, uc.deps.Clock.Now().Location()); err != nil {
		return nil, err
	}

	occupied, err := uc.deps.Repo.CountActiveBySlot(ctx, date)
	if err != nil {
		return nil, err
	}
	capacity, err := uc.deps.Repo.CountActiveStaff(ctx)
	if err != nil {
		return nil, err
	}

	times := uc.deps.Grid.Times()
	out := make([]domain.Availability, 0, len(times))
	for _, t := range times {
		out = append(out, domain.NewAvailability(timegrid.Slot{Date: date, Time: t}, occupied[t], capacity))
	}
	return out, nil
}
