package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CustomerName  string `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:20;not null" json:"customer_phone"`

	Services []string `gorm:"serializer:json;type:text;not null" json:"services"`

	Date    string `gorm:"column:slot_date;size:10;not null;index:idx_appointment_slot,priority:1;index:idx_appointment_staff_slot,priority:2" json:"date"`
	Time    string `gorm:"column:slot_time;size:5;not null;index:idx_appointment_slot,priority:2;index:idx_appointment_staff_slot,priority:3" json:"time"`
	EndTime string `gorm:"size:5" json:"end_time"`

	StaffID *uint  `gorm:"index:idx_appointment_staff_slot,priority:1" json:"staff_id"`
	Staff   *Staff `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"staff,omitempty"`

	Status string `gorm:"size:20;default:'PENDING';index" json:"status"`

	Notes       string     `gorm:"type:text" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
