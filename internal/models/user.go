package models

import (
	"time"
)

type UserRole string
type Role = UserRole

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:50"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string   `json:"-" gorm:"column:password;not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;default:student"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
