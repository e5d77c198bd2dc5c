package models

type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Category    string  `gorm:"size:50" json:"category"`
	Price       float64 `json:"price"`
	DurationMin int     `gorm:"not null" json:"duration_min"`
}
