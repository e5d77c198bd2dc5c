package dto

import (
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
	"github.com/BruksfildServices01/salon-scheduler/internal/timegrid"
)

type AppointmentListDTO struct {
	ID           uint     `json:"id"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	TimeLabel    string   `json:"time_label"`
	EndTime      string   `json:"end_time"`
	Status       string   `json:"status"`
	CustomerName string   `json:"customer_name"`
	Services     []string `json:"services"`
	StaffID      *uint    `json:"staff_id"`
	StaffName    string   `json:"staff_name,omitempty"`
}

func NewAppointmentList(aps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		item := AppointmentListDTO{
			ID:           ap.ID,
			Date:         ap.Date,
			Time:         ap.Time,
			EndTime:      ap.EndTime,
			Status:       ap.Status,
			CustomerName: ap.CustomerName,
			Services:     ap.Services,
			StaffID:      ap.StaffID,
		}
		if label, err := timegrid.To12Hour(ap.Time); err == nil {
			item.TimeLabel = label
		}
		if ap.Staff != nil {
			item.StaffName = ap.Staff.Name
		}
		out = append(out, item)
	}
	return out
}
