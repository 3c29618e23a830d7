package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''" json:"profileImage"`
	Name                string     `gorm:"default:''" json:"name"`
	Email               string     `gorm:"unique;not null" json:"email"`
	Mobile              string     `gorm:"default:''" json:"mobile"`
	Role                string     `gorm:"default:'STUDENT'" json:"role"` // STUDENT, INSTRUCTOR, ADMIN
	Password            string     `gorm:"not null" json:"-"`
	MembershipTier      string     `gorm:"default:''" json:"membershipTier"` // denormalized from active membership
	StorageFolder       string     `gorm:"default:''" json:"-"`              // per-student file area, provisioned on first enrollment
	IsEmailVerified     bool       `gorm:"default:false" json:"isEmailVerified"`
	IsDeactivated       bool       `gorm:"default:false" json:"isDeactivated"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}
