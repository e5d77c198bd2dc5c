package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

const testSecret = "test-secret"

var brt = time.FixedZone("BRT", -3*3600)

// 2025-06-27 09:00 local; "tomorrow" is 2025-06-28.
var now = time.Date(2025, 6, 27, 9, 0, 0, 0, brt)

type server struct {
	engine     *gin.Engine
	auditStore *audit.MemoryStore
}

func newServer(t *testing.T, activeStaff int) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := infraRepo.NewAppointmentMemoryRepository()
	staff := []models.Staff{{ID: 99, Name: "Former", Active: false}}
	for i := 1; i <= activeStaff; i++ {
		staff = append(staff, models.Staff{ID: uint(i), Name: fmt.Sprintf("Stylist %d", i), Active: true})
	}
	repo.Seed(staff, []models.Service{
		{Name: "Haircut", DurationMin: 30},
		{Name: "Coloring", DurationMin: 90},
	})

	store := audit.NewMemoryStore()
	dispatcher := audit.NewDispatcher(store, zap.NewNop())
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	m := metrics.New("salon")
	cfg := &config.Config{JWTSecret: testSecret, PublicRatePerMinute: 1000}

	r := gin.New()
	routes.RegisterRoutes(r, cfg, routes.Services{
		Scheduling: ucAppointment.Deps{
			Repo:    repo,
			Audit:   dispatcher,
			Metrics: m,
			Clock:   timezone.FixedClock{At: now},
			Grid:    timegrid.DefaultGrid(),
			Log:     zap.NewNop(),
		},
		AuditStore: store,
		Metrics:    m,
		Log:        zap.NewNop(),
	})

	return &server{engine: r, auditStore: store}
}

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func adminToken(t *testing.T) string {
	return token(t, jwt.MapClaims{"sub": 1, "role": "admin"})
}

func staffToken(t *testing.T, staffID uint) string {
	return token(t, jwt.MapClaims{"sub": 100 + staffID, "role": "staff", "staffId": staffID})
}

func (s *server) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) book(t *testing.T, phone, date, clock string) uint {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/public/appointments", "", gin.H{
		"customer_name":  "Customer " + phone,
		"customer_phone": phone,
		"services":       []string{"Haircut"},
		"date":           date,
		"time":           clock,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID uint `json:"id"`
	}](t, w).ID
}

func TestPublicBooking_FillsSlotThenRejects(t *testing.T) {
	s := newServer(t, 2)

	first := s.book(t, "11 91111-0001", "2025-06-28", "10:00")
	s.book(t, "11 91111-0002", "2025-06-28", "10:00")
	assert.NotZero(t, first)

	w := s.do(t, http.MethodPost, "/api/public/appointments", "", gin.H{
		"customer_name":  "Third",
		"customer_phone": "11 91111-0003",
		"services":       []string{"Haircut"},
		"date":           "2025-06-28",
		"time":           "10:00",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "slot_full", body.Code)
	assert.Equal(t, 2.0, body.Details["capacity"])
	assert.Equal(t, 2.0, body.Details["occupied"])

	w = s.do(t, http.MethodGet, "/api/public/slot-availability?date=2025-06-28&time=10:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	avail := decode[map[string]any](t, w)
	assert.Equal(t, 2.0, avail["occupied"])
	assert.Equal(t, false, avail["open"])
}

func TestPublicBooking_InvalidSlot(t *testing.T) {
	s := newServer(t, 1)

	w := s.do(t, http.MethodPost, "/api/public/appointments", "", gin.H{
		"customer_name":  "Ana",
		"customer_phone": "11 90000-0000",
		"services":       []string{"Haircut"},
		"date":           "2025-06-28",
		"time":           "10:15",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_slot", decode[errorBody](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/public/appointments", "", gin.H{
		"customer_name":  "Ana",
		"customer_phone": "11 90000-0000",
		"services":       []string{"Massage"},
		"date":           "2025-06-28",
		"time":           "10:00",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "service_not_found", decode[errorBody](t, w).Code)
}

func TestDayAvailability(t *testing.T) {
	s := newServer(t, 1)
	s.book(t, "11 90000-0001", "2025-06-28", "09:30")

	w := s.do(t, http.MethodGet, "/api/slot-availability?date=2025-06-28", adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Data []struct {
			Time     string `json:"time"`
			Occupied int    `json:"occupied"`
			Open     bool   `json:"open"`
		} `json:"data"`
		Total int `json:"total"`
	}](t, w)
	require.Equal(t, 20, body.Total)
	assert.Equal(t, "09:30", body.Data[1].Time)
	assert.False(t, body.Data[1].Open)
	assert.True(t, body.Data[0].Open)
}

func TestAssignStaff_ConflictThenOverride(t *testing.T) {
	s := newServer(t, 2)
	admin := adminToken(t)

	first := s.book(t, "11 90000-0001", "2025-06-28", "11:00")
	second := s.book(t, "11 90000-0002", "2025-06-28", "11:00")

	w := s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", first), admin, gin.H{"staff_id": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", second), admin, gin.H{"staff_id": 1})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "assignment_conflict", body.Code)
	conflicts, ok := body.Details["conflicts"].([]any)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, float64(first), conflicts[0].(map[string]any)["appointment_id"])

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", second), admin, gin.H{
		"staff_id":         1,
		"confirm_override": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["overridden"])

	w = s.do(t, http.MethodGet, "/api/appointments?date=2025-06-28&staff_id=1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Data []struct {
			ID        uint   `json:"id"`
			TimeLabel string `json:"time_label"`
			StaffName string `json:"staff_name"`
		} `json:"data"`
	}](t, w)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "11:00 AM", list.Data[0].TimeLabel)
	assert.Equal(t, "Stylist 1", list.Data[0].StaffName)
}

func TestAssignStaff_StaffCannotAssignSomeoneElse(t *testing.T) {
	s := newServer(t, 2)
	id := s.book(t, "11 90000-0001", "2025-06-28", "11:00")

	w := s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", id), staffToken(t, 1), gin.H{"staff_id": 2})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_authorized", decode[errorBody](t, w).Code)
}

func TestUnassignToday_RequiresConfirmation(t *testing.T) {
	s := newServer(t, 1)
	id := s.book(t, "11 90000-0001", "2025-06-27", "10:00")
	staff := staffToken(t, 1)

	w := s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", id), staff, gin.H{"staff_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/unassign-staff", id), staff, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "requires_confirmation", decode[errorBody](t, w).Code)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/unassign-staff?confirm=true", id), staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[models.Appointment](t, w).StaffID)
}

func TestUpdateStatus(t *testing.T) {
	s := newServer(t, 1)
	id := s.book(t, "11 90000-0001", "2025-06-28", "10:00")
	staff := staffToken(t, 1)

	w := s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/assign-staff", id), staff, gin.H{"staff_id": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/status?status=CONFIRMED", id), staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CONFIRMED", decode[models.Appointment](t, w).Status)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/status?status=COMPLETED", id), staff, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "future_appointment", decode[errorBody](t, w).Code)

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/status", id), staff, gin.H{"status": "PENDING"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "invalid_transition", body.Code)
	assert.Equal(t, "CONFIRMED", body.Details["from"])

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/api/appointments/%d/status?status=archived", id), staff, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", decode[errorBody](t, w).Code)

	w = s.do(t, http.MethodPatch, "/api/appointments/9999/status?status=CANCELLED", adminToken(t), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicCancel_MatchesPhone(t *testing.T) {
	s := newServer(t, 1)
	id := s.book(t, "(11) 98888-7777", "2025-06-28", "10:00")
	path := fmt.Sprintf("/api/public/appointments/%d/cancel", id)

	w := s.do(t, http.MethodPatch, path, "", gin.H{"customer_phone": "11 90000-0000"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPatch, path, "", gin.H{"customer_phone": "11988887777", "reason": "travelling"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode[map[string]any](t, w)["status"])

	w = s.do(t, http.MethodGet, "/api/public/slot-availability?date=2025-06-28&time=10:00", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode[map[string]any](t, w)["occupied"])
}

func TestSecuredRoutes_RequireToken(t *testing.T) {
	s := newServer(t, 1)

	w := s.do(t, http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := token(t, jwt.MapClaims{"sub": 5, "role": "staff"})
	w = s.do(t, http.MethodGet, "/api/appointments", bad, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token_payload", decode[errorBody](t, w).Code)
}

func TestAuditLogs_AdminOnly(t *testing.T) {
	s := newServer(t, 1)
	id := s.book(t, "11 90000-0001", "2025-06-28", "10:00")

	w := s.do(t, http.MethodGet, "/api/audit-logs", staffToken(t, 1), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	require.Eventually(t, func() bool {
		logs, _ := s.auditStore.List(context.Background(), audit.Filter{})
		return len(logs) > 0
	}, time.Second, 10*time.Millisecond)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/audit-logs?entity_id=%d&action=appointment_created", id), adminToken(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Data []models.AuditLog `json:"data"`
	}](t, w)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "customer", body.Data[0].ActorRole)
	assert.NotEmpty(t, body.Data[0].RequestID)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newServer(t, 1)
	s.book(t, "11 90000-0001", "2025-06-28", "10:00")

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `salon_bookings_total{result="created"} 1`))
	assert.Contains(t, w.Body.String(), `route="/api/public/appointments"`)
}
