package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Batch modes
const (
	BatchModeOneToOne = "ONE_TO_ONE"
	BatchModeGroup    = "GROUP"
)

// Batch status values
const (
	BatchScheduled = "SCHEDULED"
	BatchOngoing   = "ONGOING"
	BatchCompleted = "COMPLETED"
	BatchCancelled = "CANCELLED"
)

// Batch is a scheduled, capacity-bounded offering of a course.
//
// EnrolledStudents must always equal len(EnrolledStudentIDs) and never
// exceed Capacity. Both fields are mutated only through the capacity gate
// (services.AdmitStudent / services.ReleaseSeat); the conditional increment
// there is what keeps concurrent admissions from overshooting.
type Batch struct {
	gorm.Model
	CourseID uint   `gorm:"not null;index" json:"courseId"`
	Name     string `json:"name"`
	Mode     string `gorm:"type:varchar(20);default:'GROUP'" json:"mode"` // ONE_TO_ONE, GROUP

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Capacity           int                       `gorm:"not null" json:"capacity"`
	EnrolledStudents   int                       `gorm:"not null;default:0" json:"enrolledStudents"`
	EnrolledStudentIDs datatypes.JSONSlice[uint] `json:"enrolledStudentIds"`

	Status    string `gorm:"type:varchar(20);default:'SCHEDULED'" json:"status"`
	IsDeleted bool   `gorm:"default:false" json:"-"`

	Course Course `gorm:"foreignKey:CourseID" json:"-"`
}

func (Batch) TableName() string {
	return "batches"
}
