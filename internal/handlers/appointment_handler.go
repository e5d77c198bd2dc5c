package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/dto"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/salon-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       *ucAppointment.CreateAppointment
	updateStatus *ucAppointment.UpdateStatus
	assign       *ucAppointment.AssignStaff
	unassign     *ucAppointment.UnassignStaff
	list         *ucAppointment.ListAppointments
	get          *ucAppointment.GetAppointment
	log          *zap.Logger
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	updateStatus *ucAppointment.UpdateStatus,
	assign *ucAppointment.AssignStaff,
	unassign *ucAppointment.UnassignStaff,
	list *ucAppointment.ListAppointments,
	get *ucAppointment.GetAppointment,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		updateStatus: updateStatus,
		assign:       assign,
		unassign:     unassign,
		list:         list,
		get:          get,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	CustomerName    string   `json:"customer_name"`
	CustomerPhone   string   `json:"customer_phone"`
	Services        []string `json:"services"`
	Date            string   `json:"date" binding:"required"`
	Time            string   `json:"time" binding:"required"`
	Notes           string   `json:"notes"`
	StaffID         *uint    `json:"staff_id"`
	ConfirmOverride bool     `json:"confirm_override"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type AssignStaffRequest struct {
	StaffID         uint `json:"staff_id" binding:"required"`
	ConfirmOverride bool `json:"confirm_override"`
	Replace         bool `json:"replace"`
}

type UnassignStaffRequest struct {
	Confirm bool `json:"confirm"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "date and time are required.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:           middleware.ActorFrom(c),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		Services:        req.Services,
		Date:            req.Date,
		Time:            req.Time,
		Notes:           req.Notes,
		StaffID:         req.StaffID,
		ConfirmOverride: req.ConfirmOverride,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// STATUS
// ======================================================

// UpdateStatus takes the target status from ?status= or the body.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	status := c.Query("status")
	if status == "" {
		status = req.Status
	}
	if status == "" {
		httperr.BadRequest(c, "missing_status", "status is required.")
		return
	}

	ap, err := h.updateStatus.Execute(c.Request.Context(), ucAppointment.UpdateStatusInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: id,
		Status:        status,
		Reason:        req.Reason,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// STAFF ASSIGNMENT
// ======================================================

func (h *AppointmentHandler) AssignStaff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req AssignStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "staff_id is required.")
		return
	}

	res, err := h.assign.Execute(c.Request.Context(), ucAppointment.AssignStaffInput{
		Actor:           middleware.ActorFrom(c),
		AppointmentID:   id,
		StaffID:         req.StaffID,
		ConfirmOverride: req.ConfirmOverride,
		Replace:         req.Replace,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, res)
}

// UnassignStaff accepts confirmation either as {"confirm": true} or
// ?confirm=true.
func (h *AppointmentHandler) UnassignStaff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UnassignStaffRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	confirm, ok := queryBool(c, "confirm")
	if !ok {
		return
	}

	ap, err := h.unassign.Execute(c.Request.Context(), ucAppointment.UnassignStaffInput{
		Actor:         middleware.ActorFrom(c),
		AppointmentID: id,
		Confirm:       req.Confirm || confirm,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// READS
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	staffID, ok := queryUint(c, "staff_id")
	if !ok {
		return
	}
	unassigned, ok := queryBool(c, "unassigned")
	if !ok {
		return
	}

	apps, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Date:       c.Query("date"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		StaffID:    staffID,
		Status:     c.Query("status"),
		Unassigned: unassigned,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.List(c, dto.NewAppointmentList(apps))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, ap)
}
