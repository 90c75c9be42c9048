package models

import "time"

// User is a registered profile
type User struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"size:120;not null" json:"name"`
	Age           int       `gorm:"not null" json:"age"`
	Gender        string    `gorm:"size:10;not null" json:"gender"`
	HeightCm      float64   `gorm:"not null" json:"height_cm"`
	WeightKg      float64   `gorm:"not null" json:"weight_kg"`
	ActivityLevel string    `gorm:"size:50;not null" json:"activity_level"`
	Allergies     string    `gorm:"size:255;default:''" json:"allergies"`
	Goal          string    `gorm:"size:50;not null" json:"goal"`
	CreatedAt     time.Time `json:"created_at"`
}
