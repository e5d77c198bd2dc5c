package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

// writeError maps a use case error onto the HTTP error body. Anything not
// recognized is logged and reported as a 500.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var (
		slotErr     *timegrid.InvalidSlotError
		formatErr   *timegrid.TimeFormatError
		fullErr     *domain.SlotFullError
		conflictErr *domain.AssignmentConflictError
		authErr     *domain.NotAuthorizedError
		transErr    *domain.InvalidTransitionError
		futureErr   *domain.FutureAppointmentError
		doneErr     *domain.AlreadyCompletedError
		confirmErr  *domain.RequiresConfirmationError
		assignedErr *domain.AlreadyAssignedError
		closedErr   *domain.AppointmentClosedError
		serviceErr  *domain.UnknownServiceError
		businessErr httperr.BusinessError
	)

	switch {
	case errors.As(err, &slotErr):
		httperr.WriteDetails(c, http.StatusBadRequest, slotErr.Code(), slotErr.Error(), gin.H{
			"date":   slotErr.Date,
			"time":   slotErr.Time,
			"reason": slotErr.Reason,
		})

	case errors.As(err, &formatErr):
		httperr.BadRequest(c, formatErr.Code(), formatErr.Error())

	case errors.As(err, &serviceErr):
		httperr.WriteDetails(c, http.StatusBadRequest, serviceErr.Code(), serviceErr.Error(), gin.H{
			"services": serviceErr.Names,
		})

	case errors.As(err, &authErr):
		httperr.Forbidden(c, authErr.Code(), authErr.Error())

	case errors.Is(err, domain.ErrAppointmentNotFound):
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")

	case errors.Is(err, domain.ErrStaffNotFound):
		httperr.NotFound(c, "staff_not_found", "Staff member not found.")

	case errors.As(err, &fullErr):
		httperr.WriteDetails(c, http.StatusConflict, fullErr.Code(), fullErr.Error(), gin.H{
			"date":     fullErr.Date,
			"time":     fullErr.Time,
			"occupied": fullErr.Occupied,
			"capacity": fullErr.Capacity,
		})

	case errors.As(err, &conflictErr):
		httperr.WriteDetails(c, http.StatusConflict, conflictErr.Code(), conflictErr.Error(), gin.H{
			"appointment_id": conflictErr.AppointmentID,
			"staff_id":       conflictErr.StaffID,
			"date":           conflictErr.Date,
			"time":           conflictErr.Time,
			"conflicts":      conflictErr.Conflicts,
		})

	case errors.As(err, &confirmErr):
		httperr.WriteDetails(c, http.StatusConflict, confirmErr.Code(), confirmErr.Error(), gin.H{
			"appointment_id": confirmErr.AppointmentID,
			"date":           confirmErr.Date,
			"time":           confirmErr.Time,
		})

	case errors.As(err, &assignedErr):
		httperr.WriteDetails(c, http.StatusConflict, assignedErr.Code(), assignedErr.Error(), gin.H{
			"current_staff_id": assignedErr.CurrentStaffID,
		})

	// InvalidTransitionError wraps AlreadyCompletedError, so it goes first.
	case errors.As(err, &transErr):
		httperr.WriteDetails(c, http.StatusUnprocessableEntity, transErr.Code(), transErr.Error(), gin.H{
			"from": transErr.From,
			"to":   transErr.To,
		})

	case errors.As(err, &futureErr):
		httperr.Write(c, http.StatusUnprocessableEntity, futureErr.Code(), futureErr.Error())

	case errors.As(err, &doneErr):
		httperr.Write(c, http.StatusUnprocessableEntity, doneErr.Code(), doneErr.Error())

	case errors.As(err, &closedErr):
		httperr.Write(c, http.StatusUnprocessableEntity, closedErr.Code(), closedErr.Error())

	case errors.As(err, &businessErr):
		httperr.Write(c, businessErr.HTTPStatus(), businessErr.Code, businessMessages[businessErr.Code])

	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error("store unavailable", zap.String("path", c.FullPath()), zap.Error(err))
		httperr.Write(c, http.StatusServiceUnavailable, "store_unavailable", "Scheduling is temporarily unavailable. Try again shortly.")

	default:
		log.Error("unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		httperr.Internal(c, "internal_error", "Unexpected error.")
	}
}

var businessMessages = map[string]string{
	"customer_name_required":  "Customer name is required.",
	"customer_phone_required": "Customer phone is required.",
	"invalid_phone":           "Customer phone must have 8 to 15 digits.",
	"services_required":       "At least one service is required.",
	"staff_inactive":          "Staff member is not active.",
	"invalid_status":          "Status must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED.",
	"invalid_period":          "from must not be after to.",
	"invalid_filter":          "staff_id and unassigned cannot be combined.",
}
