package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate records an issued completion certificate. Rendering (PDF/QR)
// is handled by a downstream service; this row is the contract it consumes.
type Certificate struct {
	gorm.Model
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	CourseID     uint   `gorm:"not null;index" json:"course_id"`
	EnrollmentID uint   `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	CertificateID string `gorm:"type:varchar(64);uniqueIndex" json:"certificate_id"`

	FinalScore float64   `gorm:"default:0" json:"final_score"`
	IssuedAt   time.Time `gorm:"not null" json:"issued_at"`

	IsDeleted bool `gorm:"default:false" json:"-"`
}
