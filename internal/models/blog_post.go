package models

import "time"

// BlogPost represents a blog entry written by a user. The schema is migrated
// alongside User and Task but no routes read or write it yet.
type BlogPost struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Title      string    `json:"title" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	DatePosted time.Time `json:"date_posted" gorm:"autoCreateTime"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
}
