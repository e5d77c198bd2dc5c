package models

import "time"

// Staff is owned by the administrative back office; the scheduler only
// reads it.
type Staff struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Role   string `gorm:"size:50" json:"role"`
	Active bool   `gorm:"not null;index" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Staff) TableName() string { return "staff" }
