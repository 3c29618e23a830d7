package services

import (
	"fmt"
	"testing"
	"time"

	"edumitra/database"
	"edumitra/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var studentSeq int

// newTestDB opens an isolated in-memory database. A single connection keeps
// the in-memory store alive for the test's lifetime and serializes
// concurrent transactions the way a row lock would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	return db
}

func seedStudent(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	studentSeq++
	user := models.User{
		Name:     fmt.Sprintf("Student %d", studentSeq),
		Email:    fmt.Sprintf("student%d@example.com", studentSeq),
		Password: "hashed",
		Role:     models.RoleStudent,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, mutate ...func(*models.Course)) models.Course {
	t.Helper()
	course := models.Course{
		Title:               "Applied Go",
		Description:         "Backend engineering with Go",
		AccessDurationDays:  365,
		CompletionThreshold: 100,
		PassScorePercent:    50,
		IsPublished:         true,
		Status:              models.CourseActive,
	}
	for _, m := range mutate {
		m(&course)
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedPricing(t *testing.T, db *gorm.DB, courseID uint, mutate ...func(*models.CoursePricing)) models.CoursePricing {
	t.Helper()
	pricing := models.CoursePricing{
		CourseID:        courseID,
		Currency:        "INR",
		IndividualPrice: 10000,
		BatchPrice:      8000,
	}
	for _, m := range mutate {
		m(&pricing)
	}
	require.NoError(t, db.Create(&pricing).Error)
	return pricing
}

func seedBatch(t *testing.T, db *gorm.DB, courseID uint, capacity int, mutate ...func(*models.Batch)) models.Batch {
	t.Helper()
	batch := models.Batch{
		CourseID:  courseID,
		Name:      "Evening Batch",
		Mode:      models.BatchModeGroup,
		Capacity:  capacity,
		StartDate: time.Now().AddDate(0, 0, 7),
		EndDate:   time.Now().AddDate(0, 2, 0),
	}
	for _, m := range mutate {
		m(&batch)
	}
	require.NoError(t, db.Create(&batch).Error)
	return batch
}

func seedLessons(t *testing.T, db *gorm.DB, courseID uint, n int) []models.Lesson {
	t.Helper()
	lessons := make([]models.Lesson, 0, n)
	for i := 1; i <= n; i++ {
		lesson := models.Lesson{
			CourseID:    courseID,
			Title:       fmt.Sprintf("Lesson %d", i),
			OrderIndex:  i,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return lessons
}

// enrollIndividual is the common path: student + course + INR pricing
// already seeded, individual self-paced enrollment.
func enrollIndividual(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	t.Helper()
	enrollment, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         userID,
		CourseID:       courseID,
		EnrollmentType: models.EnrollmentIndividual,
		Currency:       "INR",
	})
	require.NoError(t, err)
	return enrollment
}
