package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

var brt = time.FixedZone("BRT", -3*3600)

// testClock can be moved forward between steps of a scenario.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	repo   *repository.AppointmentMemoryRepository
	audits *audit.MemoryStore
	disp   *audit.Dispatcher
	clock  *testClock
	deps   Deps

	create   *CreateAppointment
	status   *UpdateStatus
	assign   *AssignStaff
	unassign *UnassignStaff
	avail    *GetAvailability
	list     *ListAppointments
	getByID  *GetAppointment
}

func newHarness(t *testing.T, activeStaff int, c cache.AvailabilityCache) *harness {
	t.Helper()

	repo := repository.NewAppointmentMemoryRepository()
	staff := make([]models.Staff, 0, activeStaff+1)
	for i := 1; i <= activeStaff; i++ {
		staff = append(staff, models.Staff{ID: uint(i), Name: "staff", Active: true})
	}
	staff = append(staff, models.Staff{ID: 99, Name: "on leave", Active: false})
	repo.Seed(staff, []models.Service{
		{ID: 1, Name: "Haircut", Category: "hair", Price: 60, DurationMin: 30},
		{ID: 2, Name: "Beard", Category: "barber", Price: 35, DurationMin: 20},
		{ID: 3, Name: "Coloring", Category: "hair", Price: 180, DurationMin: 90},
	})

	audits := audit.NewMemoryStore()
	disp := audit.NewDispatcher(audits, zap.NewNop())
	t.Cleanup(func() { _ = disp.Close(context.Background()) })

	clock := &testClock{now: time.Date(2025, 6, 27, 9, 0, 0, 0, brt)}

	deps := Deps{
		Repo:    repo,
		Cache:   c,
		Audit:   disp,
		Metrics: metrics.New("test"),
		Clock:   clock,
		Grid:    timegrid.DefaultGrid(),
		Log:     zap.NewNop(),
	}

	return &harness{
		repo:     repo,
		audits:   audits,
		disp:     disp,
		clock:    clock,
		deps:     deps,
		create:   NewCreateAppointment(deps),
		status:   NewUpdateStatus(deps),
		assign:   NewAssignStaff(deps),
		unassign: NewUnassignStaff(deps),
		avail:    NewGetAvailability(deps),
		list:     NewListAppointments(deps),
		getByID:  NewGetAppointment(deps),
	}
}

func (h *harness) book(t *testing.T, date, clock string) *models.Appointment {
	t.Helper()
	ap, err := h.create.Execute(context.Background(), CreateAppointmentInput{
		Actor:         domain.Customer("11 98888-7777"),
		CustomerName:  "Ana",
		CustomerPhone: "11 98888-7777",
		Services:      []string{"Haircut"},
		Date:          date,
		Time:          clock,
	})
	require.NoError(t, err)
	return ap
}

func (h *harness) assignTo(t *testing.T, id, staffID uint) *models.Appointment {
	t.Helper()
	res, err := h.assign.Execute(context.Background(), AssignStaffInput{
		Actor:         domain.Admin(1),
		AppointmentID: id,
		StaffID:       staffID,
	})
	require.NoError(t, err)
	return res.Appointment
}

// flushAudit drains the dispatcher so audit rows can be asserted.
func (h *harness) flushAudit(t *testing.T) []models.AuditLog {
	t.Helper()
	require.NoError(t, h.disp.Close(context.Background()))
	logs, err := h.audits.List(context.Background(), audit.Filter{Limit: 500})
	require.NoError(t, err)
	return logs
}

func uintPtr(v uint) *uint { return &v }
