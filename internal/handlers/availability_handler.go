package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/salon-scheduler/internal/usecase/appointment"
)

// AvailabilityHandler serves slot occupancy to both staff and the public
// booking page.
type AvailabilityHandler struct {
	availability *ucAppointment.GetAvailability
	log          *zap.Logger
}

func NewAvailabilityHandler(uc *ucAppointment.GetAvailability, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{availability: uc, log: log}
}

// Get answers one slot when time is given and the whole day grid otherwise.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "date is required (YYYY-MM-DD).")
		return
	}

	clock := c.Query("time")
	if clock == "" {
		day, err := h.availability.ExecuteDay(c.Request.Context(), date)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		httpresp.List(c, day)
		return
	}

	a, err := h.availability.Execute(c.Request.Context(), date, clock)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	httpresp.OK(c, a)
}
