package models

import "gorm.io/gorm"

// Lesson is a single curriculum item within a course. OrderIndex drives the
// sequential-unlock policy.
type Lesson struct {
	gorm.Model
	CourseID    uint   `gorm:"not null;index" json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `gorm:"not null;default:0" json:"orderIndex"`
	IsPublished bool   `gorm:"default:true" json:"isPublished"`
	IsDeleted   bool   `gorm:"default:false" json:"-"`
}
