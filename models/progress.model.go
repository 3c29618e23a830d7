package models

import (
	"time"

	"gorm.io/gorm"
)

// Lesson progress status values
const (
	LessonNotStarted = "NOT_STARTED"
	LessonInProgress = "IN_PROGRESS"
	LessonCompleted  = "COMPLETED"
)

// LessonProgress is one detailed progress entry embedded (logically) in the
// enrollment aggregate: per-lesson state under the enrollment.
type LessonProgress struct {
	gorm.Model
	EnrollmentID uint `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"enrollmentId"`
	LessonID     uint `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"lessonId"`

	Status           string     `gorm:"type:varchar(20);default:'NOT_STARTED'" json:"status"`
	Percentage       float64    `gorm:"default:0" json:"percentage"`
	TimeSpentSeconds int        `gorm:"default:0" json:"timeSpentSeconds"`
	LastAccessed     *time.Time `json:"lastAccessed"`

	IsDeleted bool `gorm:"default:false" json:"-"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}

// Content types for the secondary progress record
const (
	ContentTypeCourse = "COURSE"
	ContentTypeLesson = "LESSON"
	ContentTypeQuiz   = "QUIZ"
)

// ProgressRecord is the analytics-oriented mirror of progress, keyed by
// (student, course, content type, content id). It is a best-effort
// write-through projection of the enrollment's embedded progress: the
// enrollment is the system of record, this table may lag behind it.
type ProgressRecord struct {
	gorm.Model
	UserID      uint   `gorm:"not null;uniqueIndex:idx_progress_record_key" json:"userId"`
	CourseID    uint   `gorm:"not null;uniqueIndex:idx_progress_record_key" json:"courseId"`
	ContentType string `gorm:"type:varchar(20);not null;uniqueIndex:idx_progress_record_key" json:"contentType"`
	ContentID   uint   `gorm:"not null;uniqueIndex:idx_progress_record_key" json:"contentId"`

	Status           string     `gorm:"type:varchar(20);default:'NOT_STARTED'" json:"status"`
	Percentage       float64    `gorm:"default:0" json:"percentage"`
	TimeSpentSeconds int        `gorm:"default:0" json:"timeSpentSeconds"`
	LastAccessed     *time.Time `json:"lastAccessed"`

	IsDeleted bool `gorm:"default:false" json:"-"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// AssessmentResult tracks quiz/assignment outcomes for an enrollment. Used
// by the completion gate when the course requires passing assessments.
type AssessmentResult struct {
	gorm.Model
	EnrollmentID uint   `gorm:"not null;uniqueIndex:idx_enrollment_assessment" json:"enrollmentId"`
	AssessmentID string `gorm:"type:varchar(100);not null;uniqueIndex:idx_enrollment_assessment" json:"assessmentId"`

	Score         float64    `gorm:"default:0" json:"score"`
	MaxScore      float64    `gorm:"default:0" json:"maxScore"`
	Passed        bool       `gorm:"default:false" json:"passed"`
	Attempts      int        `gorm:"default:0" json:"attempts"`
	LastAttemptAt *time.Time `json:"lastAttemptAt"`

	IsDeleted bool `gorm:"default:false" json:"-"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}
