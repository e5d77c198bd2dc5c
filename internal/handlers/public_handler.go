package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

// PublicHandler is the unauthenticated booking surface. The customer is
// identified only by the phone number they booked with.
type PublicHandler struct {
	create       *ucAppointment.CreateAppointment
	updateStatus *ucAppointment.UpdateStatus
	log          *zap.Logger
}

func NewPublicHandler(
	create *ucAppointment.CreateAppointment,
	updateStatus *ucAppointment.UpdateStatus,
	log *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		create:       create,
		updateStatus: updateStatus,
		log:          log,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	CustomerName  string   `json:"customer_name"`
	CustomerPhone string   `json:"customer_phone"`
	Services      []string `json:"services"`
	Date          string   `json:"date" binding:"required"` // YYYY-MM-DD
	Time          string   `json:"time" binding:"required"` // HH:MM or h:MM AM
	Notes         string   `json:"notes"`
}

type PublicCancelRequest struct {
	CustomerPhone string `json:"customer_phone" binding:"required"`
	Reason        string `json:"reason"`
}

type publicAppointmentResponse struct {
	ID      uint   `json:"id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	EndTime string `json:"end_time"`
	Status  string `json:"status"`
}

////////////////////////////////////////////////////////
// BOOK
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "date and time are required.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:         domain.Customer(req.CustomerPhone),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Services:      req.Services,
		Date:          req.Date,
		Time:          req.Time,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, publicAppointmentResponse{
		ID:      ap.ID,
		Date:    ap.Date,
		Time:    ap.Time,
		EndTime: ap.EndTime,
		Status:  ap.Status,
	})
}

////////////////////////////////////////////////////////
// CANCEL
////////////////////////////////////////////////////////

func (h *PublicHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req PublicCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "customer_phone is required.")
		return
	}

	ap, err := h.updateStatus.Execute(c.Request.Context(), ucAppointment.UpdateStatusInput{
		Actor:         domain.Customer(req.CustomerPhone),
		AppointmentID: id,
		Status:        string(domain.StatusCancelled),
		Reason:        req.Reason,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, publicAppointmentResponse{
		ID:      ap.ID,
		Date:    ap.Date,
		Time:    ap.Time,
		EndTime: ap.EndTime,
		Status:  ap.Status,
	})
}
