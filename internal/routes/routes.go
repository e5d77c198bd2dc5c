package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	"github.com/BruksfildServices01/salon-scheduler/internal/metrics"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// Services is everything the HTTP layer is built from.
type Services struct {
	Scheduling ucAppointment.Deps
	AuditStore audit.Store
	Metrics    *metrics.Metrics
	Log        *zap.Logger

	// Ping reports store health for /health. Optional.
	Ping func(ctx context.Context) error
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc Services) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(svc.Log),
		middleware.AccessLog(svc.Log),
		svc.Metrics.Middleware(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// USE CASES
	// ======================================================
	deps := svc.Scheduling

	availabilityUC := ucAppointment.NewGetAvailability(deps)
	createAppointmentUC := ucAppointment.NewCreateAppointment(deps)
	updateStatusUC := ucAppointment.NewUpdateStatus(deps)
	assignStaffUC := ucAppointment.NewAssignStaff(deps)
	unassignStaffUC := ucAppointment.NewUnassignStaff(deps)
	listAppointmentsUC := ucAppointment.NewListAppointments(deps)
	getAppointmentUC := ucAppointment.NewGetAppointment(deps)

	// ======================================================
	// HANDLERS
	// ======================================================
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityUC, svc.Log)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		updateStatusUC,
		assignStaffUC,
		unassignStaffUC,
		listAppointmentsUC,
		getAppointmentUC,
		svc.Log,
	)

	publicHandler := handlers.NewPublicHandler(createAppointmentUC, updateStatusUC, svc.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(svc.AuditStore, svc.Log)

	// ======================================================
	// OPERATIONS
	// ======================================================
	r.GET("/health", health(svc.Ping))
	r.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimit(cfg.PublicRatePerMinute, svc.Log))
		{
			publicAPI.GET("/slot-availability", availabilityHandler.Get)
			publicAPI.POST("/appointments", publicHandler.CreateAppointment)
			publicAPI.PATCH("/appointments/:id/cancel", publicHandler.Cancel)
		}

		// ------------------------------
		// SECURED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/slot-availability", availabilityHandler.Get)

			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			secured.PATCH("/appointments/:id/assign-staff", appointmentHandler.AssignStaff)
			secured.PATCH("/appointments/:id/unassign-staff", appointmentHandler.UnassignStaff)

			secured.GET("/audit-logs", middleware.RequireAdmin(), auditLogsHandler.List)
		}
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
