package services

import (
	"testing"
	"time"

	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEnrollmentIndividual(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db, func(c *models.Course) { c.AccessDurationDays = 90 })
	seedPricing(t, db, course.ID)

	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	assert.Equal(t, models.StatusActive, enrollment.Status)
	assert.Equal(t, models.EnrollmentIndividual, enrollment.EnrollmentType)
	require.NotNil(t, enrollment.CourseID)
	assert.Equal(t, course.ID, *enrollment.CourseID)
	assert.Nil(t, enrollment.BatchID)

	wantExpiry := time.Now().AddDate(0, 0, 90)
	assert.WithinDuration(t, wantExpiry, enrollment.AccessExpiryDate, time.Minute)
}

func TestCreateEnrollmentDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	enrollIndividual(t, db, user.ID, course.ID)

	_, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		EnrollmentType: models.EnrollmentIndividual,
		Currency:       "INR",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDuplicateEnrollment))
}

func TestCreateEnrollmentCancelledDoesNotBlockReenroll(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	first := enrollIndividual(t, db, user.ID, course.ID)
	_, err := TransitionEnrollment(db, first.ID, models.StatusCancelled)
	require.NoError(t, err)

	// A cancelled enrollment no longer counts toward uniqueness.
	enrollIndividual(t, db, user.ID, course.ID)
}

func TestCreateEnrollmentBatchRequiresBatchID(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	_, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      3,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidEnrollmentStructure))
}

func TestCreateEnrollmentBatchSizeRules(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	oneToOne := seedBatch(t, db, course.ID, 1, func(b *models.Batch) { b.Mode = models.BatchModeOneToOne })
	group := seedBatch(t, db, course.ID, 10)

	// One-to-one cannot carry a group.
	_, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		BatchID:        &oneToOne.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      2,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidEnrollmentStructure))

	// Group batches need at least two participants.
	_, err = CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		BatchID:        &group.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      1,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidEnrollmentStructure))
}

func TestCreateEnrollmentIndividualOneToOneSession(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	oneToOne := seedBatch(t, db, course.ID, 1, func(b *models.Batch) { b.Mode = models.BatchModeOneToOne })
	group := seedBatch(t, db, course.ID, 10)

	// Individual enrollments may book a one-to-one session offering.
	enrollment, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		BatchID:        &oneToOne.ID,
		EnrollmentType: models.EnrollmentIndividual,
		Currency:       "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, enrollment.BatchInfo.Data().BatchSize)

	// ...but never a group batch.
	other := seedStudent(t, db)
	_, err = CreateEnrollment(db, EnrollmentInput{
		UserID:         other.ID,
		CourseID:       course.ID,
		BatchID:        &group.ID,
		EnrollmentType: models.EnrollmentIndividual,
		Currency:       "INR",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidEnrollmentStructure))
}

func TestCreateEnrollmentBatchGracePeriod(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	endDate := time.Now().AddDate(0, 3, 0)
	batch := seedBatch(t, db, course.ID, 10, func(b *models.Batch) { b.EndDate = endDate })

	enrollment, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		BatchID:        &batch.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      3,
	})
	require.NoError(t, err)

	wantExpiry := endDate.AddDate(0, 0, AccessGraceDays)
	assert.WithinDuration(t, wantExpiry, enrollment.AccessExpiryDate, time.Second)
}

func TestCreateEnrollmentFullBatch(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	batch := seedBatch(t, db, course.ID, 1)

	first := seedStudent(t, db)
	_, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         first.ID,
		CourseID:       course.ID,
		BatchID:        &batch.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      2,
	})
	require.NoError(t, err)

	second := seedStudent(t, db)
	_, err = CreateEnrollment(db, EnrollmentInput{
		UserID:         second.ID,
		CourseID:       course.ID,
		BatchID:        &batch.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      2,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindCapacityExceeded))

	// The failed admission must not leave an enrollment row behind.
	var count int64
	db.Model(&models.Enrollment{}).Where("user_id = ?", second.ID).Count(&count)
	assert.Zero(t, count)
}

func TestTransitionEnrollmentTable(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	held, err := TransitionEnrollment(db, enrollment.ID, models.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, held.Status)

	// ON_HOLD cannot complete directly.
	_, err = TransitionEnrollment(db, enrollment.ID, models.StatusCompleted)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTransition))

	resumed, err := TransitionEnrollment(db, enrollment.ID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resumed.Status)

	completed, err := TransitionEnrollment(db, enrollment.ID, models.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)

	// COMPLETED is terminal.
	_, err = TransitionEnrollment(db, enrollment.ID, models.StatusActive)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTransition))
}

func TestCancelBatchEnrollmentReleasesSeat(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	batch := seedBatch(t, db, course.ID, 5)

	enrollment, err := CreateEnrollment(db, EnrollmentInput{
		UserID:         user.ID,
		CourseID:       course.ID,
		BatchID:        &batch.ID,
		EnrollmentType: models.EnrollmentBatch,
		Currency:       "INR",
		BatchSize:      2,
	})
	require.NoError(t, err)

	var mid models.Batch
	require.NoError(t, db.First(&mid, batch.ID).Error)
	require.Equal(t, 1, mid.EnrolledStudents)

	_, err = TransitionEnrollment(db, enrollment.ID, models.StatusCancelled)
	require.NoError(t, err)

	var after models.Batch
	require.NoError(t, db.First(&after, batch.ID).Error)
	assert.Equal(t, 0, after.EnrolledStudents)
	assert.Empty(t, []uint(after.EnrolledStudentIDs))
}

func TestExpireOverdueEnrollments(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	enrollment := enrollIndividual(t, db, user.ID, course.ID)
	require.NoError(t, db.Model(&models.Enrollment{}).Where("id = ?", enrollment.ID).
		Update("access_expiry_date", time.Now().AddDate(0, 0, -1)).Error)

	count, err := ExpireOverdueEnrollments(db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, models.StatusExpired, reloaded.Status)
}
