package appointment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// Deps is what every scheduling use case needs. Cache and Metrics may be
// left nil.
type Deps struct {
	Repo    domain.Repository
	Cache   cache.AvailabilityCache
	Audit   *audit.Dispatcher
	Metrics *metrics.Metrics
	Clock   timezone.Clock
	Grid    timegrid.Grid
	Log     *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// invalidate drops the cached availability of a slot after a committed
// write. A failure only means the display may be stale until the TTL.
func (d Deps) invalidate(ctx context.Context, date, clock string) {
	if err := d.Cache.Invalidate(ctx, date, clock); err != nil {
		d.Log.Warn("availability cache invalidation failed",
			zap.String("date", date),
			zap.String("time", clock),
			zap.Error(err),
		)
	}
}

func (d Deps) record(ctx context.Context, actor domain.Actor, action string, entityID uint, metadata any) {
	id := entityID
	d.Audit.Dispatch(audit.Event{
		ActorRole: string(actor.Role),
		ActorID:   actor.AuditID(),
		RequestID: audit.RequestID(ctx),
		Action:    action,
		Entity:    audit.EntityAppointment,
		EntityID:  &id,
		Metadata:  metadata,
	})
}

func (d Deps) recordNoEntity(ctx context.Context, actor domain.Actor, action string, metadata any) {
	d.Audit.Dispatch(audit.Event{
		ActorRole: string(actor.Role),
		ActorID:   actor.AuditID(),
		RequestID: audit.RequestID(ctx),
		Action:    action,
		Entity:    audit.EntityAppointment,
		Metadata:  metadata,
	})
}

// errorCode is the metrics label for a failed operation.
func errorCode(err error) string {
	var c interface{ Code() string }
	if errors.As(err, &c) {
		return c.Code()
	}
	var be httperr.BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return "error"
}
