package models

import "time"

// Feedback is a rating of a recommended food
type Feedback struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    int       `gorm:"index;not null" json:"user_id"`
	FoodID    int       `gorm:"index;not null" json:"food_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"size:255;default:''" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}
