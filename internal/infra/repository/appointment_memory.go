package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// AppointmentMemoryRepository keeps everything in process. Transactions are
// serialized by a single writer lock and work on a private copy that
// replaces the shared state only when fn succeeds.
type AppointmentMemoryRepository struct {
	writeMu sync.Mutex

	mu    sync.RWMutex
	state *memoryState
}

func NewAppointmentMemoryRepository() *AppointmentMemoryRepository {
	return &AppointmentMemoryRepository{state: newMemoryState()}
}

// Seed replaces the staff directory and service catalog.
func (r *AppointmentMemoryRepository) Seed(staff []models.Staff, services []models.Service) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state.staff = make(map[uint]models.Staff, len(staff))
	for _, s := range staff {
		r.state.staff[s.ID] = s
	}
	r.state.services = make(map[string]models.Service, len(services))
	for _, s := range services {
		r.state.services[s.Name] = s
	}
}

func (r *AppointmentMemoryRepository) Transaction(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	working := r.state.clone()
	r.mu.RUnlock()

	if err := fn(&memoryTx{st: working}); err != nil {
		return err
	}

	r.mu.Lock()
	r.state = working
	r.mu.Unlock()
	return nil
}

func (r *AppointmentMemoryRepository) snapshot() *memoryState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// --------------------------------------------------
// Snapshot reads
// --------------------------------------------------

// A committed memoryState is never mutated again, so readers can use it
// after releasing the lock.

func (r *AppointmentMemoryRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.snapshot().getAppointment(id)
}

func (r *AppointmentMemoryRepository) ListAppointments(ctx context.Context, f domain.Filter) ([]models.Appointment, error) {
	return r.snapshot().listAppointments(f), nil
}

func (r *AppointmentMemoryRepository) CountActiveInSlot(ctx context.Context, date, clock string) (int, error) {
	return r.snapshot().countActiveInSlot(date, clock), nil
}

func (r *AppointmentMemoryRepository) CountActiveBySlot(ctx context.Context, date string) (map[string]int, error) {
	return r.snapshot().countActiveBySlot(date), nil
}

func (r *AppointmentMemoryRepository) CountActiveStaff(ctx context.Context) (int, error) {
	return r.snapshot().countActiveStaff(), nil
}

func (r *AppointmentMemoryRepository) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	return r.snapshot().getStaff(id)
}

func (r *AppointmentMemoryRepository) GetServicesByName(ctx context.Context, names []string) ([]models.Service, error) {
	return r.snapshot().servicesByName(names), nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

type memoryTx struct {
	st *memoryState
}

func (t *memoryTx) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return t.st.getAppointment(id)
}

func (t *memoryTx) ListAppointments(ctx context.Context, f domain.Filter) ([]models.Appointment, error) {
	return t.st.listAppointments(f), nil
}

func (t *memoryTx) CountActiveInSlot(ctx context.Context, date, clock string) (int, error) {
	return t.st.countActiveInSlot(date, clock), nil
}

func (t *memoryTx) CountActiveBySlot(ctx context.Context, date string) (map[string]int, error) {
	return t.st.countActiveBySlot(date), nil
}

func (t *memoryTx) CountActiveStaff(ctx context.Context) (int, error) {
	return t.st.countActiveStaff(), nil
}

func (t *memoryTx) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	return t.st.getStaff(id)
}

func (t *memoryTx) GetServicesByName(ctx context.Context, names []string) ([]models.Service, error) {
	return t.st.servicesByName(names), nil
}

// LockSlot is a no-op: the writer lock already serializes every transaction.
func (t *memoryTx) LockSlot(ctx context.Context, date, clock string) error {
	return ctx.Err()
}

func (t *memoryTx) GetAppointmentForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	return t.st.getAppointment(id)
}

func (t *memoryTx) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	now := time.Now()
	t.st.nextID++
	ap.ID = t.st.nextID
	ap.CreatedAt = now
	ap.UpdatedAt = now
	if ap.Status == "" {
		ap.Status = string(domain.InitialStatus())
	}
	t.st.appointments[ap.ID] = copyAppointment(*ap)
	return nil
}

func (t *memoryTx) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	if _, ok := t.st.appointments[ap.ID]; !ok {
		return domain.ErrAppointmentNotFound
	}
	ap.UpdatedAt = time.Now()
	t.st.appointments[ap.ID] = copyAppointment(*ap)
	return nil
}

func (t *memoryTx) ListStaffAppointmentsInSlot(
	ctx context.Context,
	staffID uint,
	date string,
	clock string,
	excludeID uint,
) ([]models.Appointment, error) {

	var out []models.Appointment
	for _, ap := range t.st.sorted() {
		if ap.ID == excludeID || ap.StaffID == nil || *ap.StaffID != staffID {
			continue
		}
		if ap.Date == date && ap.Time == clock && domain.Status(ap.Status).Active() {
			out = append(out, copyAppointment(ap))
		}
	}
	return out, nil
}

// --------------------------------------------------
// State
// --------------------------------------------------

type memoryState struct {
	appointments map[uint]models.Appointment
	staff        map[uint]models.Staff
	services     map[string]models.Service
	nextID       uint
}

func newMemoryState() *memoryState {
	return &memoryState{
		appointments: map[uint]models.Appointment{},
		staff:        map[uint]models.Staff{},
		services:     map[string]models.Service{},
	}
}

// clone copies the appointment table. Staff and services are replaced
// wholesale by Seed, never edited in place, so they are shared.
func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		appointments: make(map[uint]models.Appointment, len(s.appointments)),
		staff:        s.staff,
		services:     s.services,
		nextID:       s.nextID,
	}
	for id, ap := range s.appointments {
		out.appointments[id] = ap
	}
	return out
}

func (s *memoryState) sorted() []models.Appointment {
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, ap := range s.appointments {
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
	return out
}

func (s *memoryState) getAppointment(id uint) (*models.Appointment, error) {
	ap, ok := s.appointments[id]
	if !ok {
		return nil, domain.ErrAppointmentNotFound
	}
	cp := copyAppointment(ap)
	return &cp, nil
}

func (s *memoryState) listAppointments(f domain.Filter) []models.Appointment {
	out := []models.Appointment{}
	for _, ap := range s.sorted() {
		if f.Date != "" && ap.Date != f.Date {
			continue
		}
		if f.From != "" && ap.Date < f.From {
			continue
		}
		if f.To != "" && ap.Date > f.To {
			continue
		}
		if f.StaffID != nil && (ap.StaffID == nil || *ap.StaffID != *f.StaffID) {
			continue
		}
		if f.Unassigned && ap.StaffID != nil {
			continue
		}
		if f.Status != "" && ap.Status != string(f.Status) {
			continue
		}

		cp := copyAppointment(ap)
		if cp.StaffID != nil {
			if staff, ok := s.staff[*cp.StaffID]; ok {
				cp.Staff = &staff
			}
		}
		out = append(out, cp)
	}
	return out
}

func (s *memoryState) countActiveInSlot(date, clock string) int {
	n := 0
	for _, ap := range s.appointments {
		if ap.Date == date && ap.Time == clock && domain.Status(ap.Status).Active() {
			n++
		}
	}
	return n
}

func (s *memoryState) countActiveBySlot(date string) map[string]int {
	out := map[string]int{}
	for _, ap := range s.appointments {
		if ap.Date == date && domain.Status(ap.Status).Active() {
			out[ap.Time]++
		}
	}
	return out
}

func (s *memoryState) countActiveStaff() int {
	n := 0
	for _, st := range s.staff {
		if st.Active {
			n++
		}
	}
	return n
}

func (s *memoryState) getStaff(id uint) (*models.Staff, error) {
	st, ok := s.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	return &st, nil
}

func (s *memoryState) servicesByName(names []string) []models.Service {
	out := make([]models.Service, 0, len(names))
	for _, name := range names {
		if svc, ok := s.services[name]; ok {
			out = append(out, svc)
		}
	}
	return out
}

func copyAppointment(ap models.Appointment) models.Appointment {
	ap.Services = append([]string(nil), ap.Services...)
	if ap.StaffID != nil {
		id := *ap.StaffID
		ap.StaffID = &id
	}
	ap.Staff = nil
	return ap
}

var (
	_ domain.Repository = (*AppointmentMemoryRepository)(nil)
	_ domain.Tx         = (*memoryTx)(nil)
)
