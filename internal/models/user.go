package models

import "time"

// User represents a registered account.
type User struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Username  string     `json:"username" gorm:"uniqueIndex;type:varchar(80);not null" validate:"required,min=3,max=80"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(120);not null" validate:"required,email,max=120"`
	Password  string     `gorm:"type:varchar(255);not null" validate:"required,min=8"` // bcrypt hash; no json tag for security
	CreatedAt time.Time  `json:"created_at"`
	Tasks     []Task     `json:"-" gorm:"foreignKey:UserID"`
	Posts     []BlogPost `json:"-" gorm:"foreignKey:UserID"`
}
