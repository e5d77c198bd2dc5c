package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

const (
	ActionAppointmentCreated = "appointment_created"
	ActionStatusChanged      = "appointment_status_changed"
	ActionStaffAssigned      = "staff_assigned"
	ActionStaffUnassigned    = "staff_unassigned"
	ActionAssignmentConflict = "assignment_conflict"
	ActionSlotFull           = "slot_full"

	EntityAppointment = "appointment"
)

const (
	defaultQueueSize    = 100
	defaultWriteTimeout = 5 * time.Second
)

type Event struct {
	ActorRole string
	ActorID   *uint
	RequestID string
	Action    string
	Entity    string
	EntityID  *uint
	Metadata  any
}

// Dispatcher persists audit events off the request path. A full queue drops
// the event instead of blocking the caller.
type Dispatcher struct {
	store Store
	log   *zap.Logger
	queue chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(store Store, log *zap.Logger) *Dispatcher {
	return newDispatcher(store, log, defaultQueueSize)
}

func newDispatcher(store Store, log *zap.Logger, size int) *Dispatcher {
	d := &Dispatcher{
		store: store,
		log:   log,
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		entry := models.AuditLog{
			ActorRole: ev.ActorRole,
			ActorID:   ev.ActorID,
			RequestID: ev.RequestID,
			Action:    ev.Action,
			Entity:    ev.Entity,
			EntityID:  ev.EntityID,
		}
		if ev.Metadata != nil {
			if b, err := json.Marshal(ev.Metadata); err == nil {
				entry.Metadata = string(b)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
		if err := d.store.Save(ctx, &entry); err != nil {
			d.log.Error("audit write failed", zap.String("action", ev.Action), zap.Error(err))
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("audit dispatcher closed, dropping event", zap.String("action", ev.Action))
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close stops accepting events and waits until the queue is drained or ctx
// expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
