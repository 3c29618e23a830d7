package models

import (
	"time"

	"gorm.io/gorm"
)

// Course status values
const (
	CourseDraft    = "DRAFT"
	CourseActive   = "ACTIVE"
	CourseInactive = "INACTIVE"
)

// Course represents a learning course
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	InstructorID uint   `gorm:"index" json:"instructorId"`
	Status       string `gorm:"default:'DRAFT'" json:"status"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string `json:"thumbnail_url"`

	// Access and completion policy
	AccessDurationDays    int  `gorm:"default:365" json:"accessDurationDays"` // self-paced access window
	SequentialUnlock      bool `gorm:"default:false" json:"sequentialUnlock"` // lessons must be completed in order
	CompletionThreshold   int  `gorm:"default:100" json:"completionThreshold"`
	RequireAssessmentPass bool `gorm:"default:false" json:"requireAssessmentPass"`
	PassScorePercent      int  `gorm:"default:50" json:"passScorePercent"`

	IsPublished bool `gorm:"default:false" json:"is_published"`
	IsDeleted   bool `gorm:"default:false" json:"-"`
}

// CoursePricing holds per-currency price configuration for a course.
// Enrollment stores an immutable snapshot of the resolved price, so rows
// here may change freely without touching existing enrollments.
type CoursePricing struct {
	gorm.Model
	CourseID uint   `gorm:"not null;uniqueIndex:idx_course_currency" json:"courseId"`
	Currency string `gorm:"type:varchar(10);not null;uniqueIndex:idx_course_currency" json:"currency"`

	IndividualPrice float64 `gorm:"not null;default:0" json:"individualPrice"`
	BatchPrice      float64 `gorm:"not null;default:0" json:"batchPrice"`

	EarlyBirdDiscount float64    `gorm:"default:0" json:"earlyBirdDiscount"` // flat amount off individual price
	EarlyBirdUntil    *time.Time `json:"earlyBirdUntil"`
	GroupDiscountPct  float64    `gorm:"default:0" json:"groupDiscountPct"` // percent off batch price
	GroupMinSize      int        `gorm:"default:0" json:"groupMinSize"`     // batch size that activates the group discount

	IsDeleted bool `gorm:"default:false" json:"-"`
}

func (CoursePricing) TableName() string {
	return "course_pricings"
}
