package models

import "time"

// Task represents a single to-do item owned by a user.
// DueDate carries a calendar date only; the time-of-day portion is always
// midnight UTC so date comparisons stay exact across drivers.
type Task struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Content   string     `json:"content" gorm:"type:varchar(200);not null" validate:"required,max=200"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
	Completed bool       `json:"completed" gorm:"default:false"`
}
