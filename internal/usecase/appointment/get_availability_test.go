package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

func redisCache(t *testing.T) *cache.RedisAvailability {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisAvailability(client, time.Minute)
}

func TestGetAvailability_CapacityFor(t *testing.T) {
	h := newHarness(t, 2, cache.Nop{})
	ctx := context.Background()

	a, err := h.avail.Execute(ctx, "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Equal(t, domain.Availability{Date: "2025-06-27", Time: "10:00", Occupied: 0, Capacity: 2, Open: true}, a)

	h.book(t, "2025-06-27", "10:00")
	h.book(t, "2025-06-27", "10:00")

	a, err = h.avail.Execute(ctx, "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Occupied)
	assert.False(t, a.Open)
	assert.Zero(t, a.Remaining())
}

func TestGetAvailability_ZeroCapacityIsClosedNotAnError(t *testing.T) {
	h := newHarness(t, 0, cache.Nop{})

	a, err := h.avail.Execute(context.Background(), "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Zero(t, a.Capacity)
	assert.False(t, a.Open)
}

func TestGetAvailability_InvalidSlot(t *testing.T) {
	h := newHarness(t, 1, cache.Nop{})

	_, err := h.avail.Execute(context.Background(), "2025-06-27", "10:10")
	var se *timegrid.InvalidSlotError
	assert.ErrorAs(t, err, &se)
}

func TestGetAvailability_CacheInvalidatedOnBookingAndCancel(t *testing.T) {
	h := newHarness(t, 2, redisCache(t))
	ctx := context.Background()

	a, err := h.avail.Execute(ctx, "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Occupied)

	ap := h.book(t, "2025-06-27", "10:00")

	a, err = h.avail.Execute(ctx, "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Occupied, "booking must invalidate the cached slot")

	_, err = h.status.Execute(ctx, UpdateStatusInput{Actor: domain.Admin(1), AppointmentID: ap.ID, Status: "CANCELLED"})
	require.NoError(t, err)

	a, err = h.avail.Execute(ctx, "2025-06-27", "10:00")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Occupied, "cancellation must invalidate the cached slot")
}

func TestGetAvailability_StaleCacheNeverGatesBooking(t *testing.T) {
	c := redisCache(t)
	h := newHarness(t, 1, c)
	ctx := context.Background()

	// poison the cache with an "open" answer for a slot that is full
	h.book(t, "2025-06-27", "10:00")
	require.NoError(t, c.Set(ctx, domain.Availability{Date: "2025-06-27", Time: "10:00", Occupied: 0, Capacity: 1, Open: true}))

	_, err := h.create.Execute(ctx, CreateAppointmentInput{
		CustomerName:  "Bruno",
		CustomerPhone: "11 97777-0000",
		Services:      []string{"Haircut"},
		Date:          "2025-06-27",
		Time:          "10:00",
	})
	var full *domain.SlotFullError
	assert.ErrorAs(t, err, &full)
}

func TestGetAvailability_Day(t *testing.T) {
	h := newHarness(t, 1, cache.Nop{})
	ctx := context.Background()

	h.book(t, "2025-06-27", "09:30")

	day, err := h.avail.ExecuteDay(ctx, "2025-06-27")
	require.NoError(t, err)
	require.Len(t, day, 20)
	assert.Equal(t, "09:00", day[0].Time)
	assert.True(t, day[0].Open)
	assert.Equal(t, "09:30", day[1].Time)
	assert.False(t, day[1].Open)
	assert.Equal(t, "18:30", day[19].Time)

	_, err = h.avail.ExecuteDay(ctx, "2025-13-01")
	var se *timegrid.InvalidSlotError
	assert.ErrorAs(t, err, &se)
}

func TestListAppointments_Filters(t *testing.T) {
	h := newHarness(t, 3, cache.Nop{})
	ctx := context.Background()

	a := h.book(t, "2025-06-27", "10:00")
	h.book(t, "2025-06-28", "10:00")
	h.book(t, "2025-07-05", "10:00")
	h.assignTo(t, a.ID, 2)

	byDate, err := h.list.Execute(ctx, ListAppointmentsInput{Date: "2025-06-27"})
	require.NoError(t, err)
	assert.Len(t, byDate, 1)

	byStaff, err := h.list.Execute(ctx, ListAppointmentsInput{StaffID: uintPtr(2)})
	require.NoError(t, err)
	require.Len(t, byStaff, 1)
	assert.Equal(t, a.ID, byStaff[0].ID)

	queue, err := h.list.Execute(ctx, ListAppointmentsInput{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	june, err := h.list.Execute(ctx, ListAppointmentsInput{From: "2025-06-01", To: "2025-06-30", Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, june, 2)

	_, err = h.list.Execute(ctx, ListAppointmentsInput{From: "2025-07-01", To: "2025-06-01"})
	assert.Error(t, err)
	_, err = h.list.Execute(ctx, ListAppointmentsInput{Status: "DONE"})
	assert.Error(t, err)
	_, err = h.list.Execute(ctx, ListAppointmentsInput{Date: "yesterday"})
	assert.Error(t, err)
}
