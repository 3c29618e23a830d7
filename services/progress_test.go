package services

import (
	"testing"

	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLessonProgressSequentialBlockers(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db, func(c *models.Course) { c.SequentialUnlock = true })
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 3)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	// Jumping straight to lesson 3 names both missing prerequisites.
	_, err := UpdateLessonProgress(db, enrollment.ID, lessons[2].ID,
		LessonProgressInput{Status: models.LessonCompleted, Percentage: 100})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSequentialViolation))

	svcErr := AsServiceError(err)
	require.NotNil(t, svcErr)
	details, ok := svcErr.Details.(SequentialViolationDetails)
	require.True(t, ok)
	assert.Equal(t, []uint{lessons[0].ID, lessons[1].ID}, details.BlockingLessonIDs)

	// Starting lesson 3 without completing it is allowed; only completion
	// is gated.
	_, err = UpdateLessonProgress(db, enrollment.ID, lessons[2].ID,
		LessonProgressInput{Status: models.LessonInProgress, Percentage: 10})
	require.NoError(t, err)
}

func TestUpdateLessonProgressInOrderCompletesCourse(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db, func(c *models.Course) { c.SequentialUnlock = true })
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 3)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	for i, lesson := range lessons {
		updated, err := UpdateLessonProgress(db, enrollment.ID, lesson.ID,
			LessonProgressInput{Status: models.LessonCompleted, Percentage: 100, TimeSpentSeconds: 600})
		require.NoError(t, err)

		wantPct := float64((i + 1) * 100 / 3)
		if i == len(lessons)-1 {
			assert.Equal(t, 100.0, updated.OverallPercentage)
			assert.Equal(t, models.StatusCompleted, updated.Status)
			require.NotNil(t, updated.CompletedAt)
		} else {
			assert.InDelta(t, wantPct, updated.OverallPercentage, 1.0)
			assert.Equal(t, models.StatusActive, updated.Status)
		}
	}
}

func TestUpdateLessonProgressRequiresActiveEnrollment(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	_, err := TransitionEnrollment(db, enrollment.ID, models.StatusOnHold)
	require.NoError(t, err)

	_, err = UpdateLessonProgress(db, enrollment.ID, lessons[0].ID,
		LessonProgressInput{Status: models.LessonCompleted, Percentage: 100})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidTransition))
}

func TestUpdateLessonProgressAccumulatesTime(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 2)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	for _, spent := range []int{300, 450} {
		_, err := UpdateLessonProgress(db, enrollment.ID, lessons[0].ID,
			LessonProgressInput{Status: models.LessonInProgress, Percentage: 50, TimeSpentSeconds: spent})
		require.NoError(t, err)
	}

	var entry models.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessons[0].ID).
		First(&entry).Error)
	assert.Equal(t, 750, entry.TimeSpentSeconds)
}

func TestProgressMirroredToAnalyticsRecord(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 2)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	_, err := UpdateLessonProgress(db, enrollment.ID, lessons[0].ID,
		LessonProgressInput{Status: models.LessonCompleted, Percentage: 100, TimeSpentSeconds: 120})
	require.NoError(t, err)

	var lessonRecord models.ProgressRecord
	require.NoError(t, db.Where("user_id = ? AND course_id = ? AND content_type = ? AND content_id = ?",
		user.ID, course.ID, models.ContentTypeLesson, lessons[0].ID).First(&lessonRecord).Error)
	assert.Equal(t, models.LessonCompleted, lessonRecord.Status)
	assert.Equal(t, 120, lessonRecord.TimeSpentSeconds)

	var courseRecord models.ProgressRecord
	require.NoError(t, db.Where("user_id = ? AND course_id = ? AND content_type = ?",
		user.ID, course.ID, models.ContentTypeCourse).First(&courseRecord).Error)
	assert.InDelta(t, 50.0, courseRecord.Percentage, 0.1)
}

func TestResetLessonProgressKeepsCompletion(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	updated, err := UpdateLessonProgress(db, enrollment.ID, lessons[0].ID,
		LessonProgressInput{Status: models.LessonCompleted, Percentage: 100})
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, updated.Status)

	reset, err := ResetLessonProgress(db, enrollment.ID, lessons[0].ID)
	require.NoError(t, err)

	// Counters drop but the granted completion stands.
	assert.Zero(t, reset.LessonsCompleted)
	assert.Zero(t, reset.OverallPercentage)
	assert.Equal(t, models.StatusCompleted, reset.Status)

	var entry models.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessons[0].ID).
		First(&entry).Error)
	assert.Equal(t, models.LessonNotStarted, entry.Status)
}

func TestResetLessonProgressWithoutEntry(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	_, err := ResetLessonProgress(db, enrollment.ID, 12345)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestSubmitAssessmentValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	for _, bad := range []struct{ score, max float64 }{
		{-1, 100}, {101, 100}, {50, 0},
	} {
		_, err := SubmitAssessment(db, enrollment.ID, "quiz-1", bad.score, bad.max)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindInvalidAssessment))
	}
}

func TestSubmitAssessmentUpsertsAttempts(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	first, err := SubmitAssessment(db, enrollment.ID, "quiz-1", 30, 100)
	require.NoError(t, err)
	assert.False(t, first.Passed)
	assert.Equal(t, 1, first.Attempts)

	second, err := SubmitAssessment(db, enrollment.ID, "quiz-1", 80, 100)
	require.NoError(t, err)
	assert.True(t, second.Passed)
	assert.Equal(t, 2, second.Attempts)
	assert.Equal(t, first.ID, second.ID)
}

func TestSubmitAssessmentMirroredToAnalyticsRecord(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	result, err := SubmitAssessment(db, enrollment.ID, "quiz-1", 30, 100)
	require.NoError(t, err)

	var quizRecord models.ProgressRecord
	require.NoError(t, db.Where("user_id = ? AND course_id = ? AND content_type = ? AND content_id = ?",
		user.ID, course.ID, models.ContentTypeQuiz, result.ID).First(&quizRecord).Error)
	assert.Equal(t, models.LessonInProgress, quizRecord.Status)
	assert.InDelta(t, 30.0, quizRecord.Percentage, 0.1)

	// A reattempt updates the same record instead of adding a second one.
	_, err = SubmitAssessment(db, enrollment.ID, "quiz-1", 90, 100)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ProgressRecord{}).
		Where("user_id = ? AND content_type = ?", user.ID, models.ContentTypeQuiz).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.Where("user_id = ? AND content_type = ? AND content_id = ?",
		user.ID, models.ContentTypeQuiz, result.ID).First(&quizRecord).Error)
	assert.Equal(t, models.LessonCompleted, quizRecord.Status)
	assert.InDelta(t, 90.0, quizRecord.Percentage, 0.1)
}

func TestAssessmentGateBlocksCompletion(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db, func(c *models.Course) {
		c.RequireAssessmentPass = true
		c.PassScorePercent = 60
	})
	seedPricing(t, db, course.ID)
	lessons := seedLessons(t, db, course.ID, 1)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	// All lessons done, but no assessment on record: completion is withheld.
	updated, err := UpdateLessonProgress(db, enrollment.ID, lessons[0].ID,
		LessonProgressInput{Status: models.LessonCompleted, Percentage: 100})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.OverallPercentage)
	assert.Equal(t, models.StatusActive, updated.Status)

	// A failing score still withholds completion.
	_, err = SubmitAssessment(db, enrollment.ID, "final-exam", 40, 100)
	require.NoError(t, err)
	var mid models.Enrollment
	require.NoError(t, db.First(&mid, enrollment.ID).Error)
	assert.Equal(t, models.StatusActive, mid.Status)

	// Passing the exam tips the enrollment into completion.
	_, err = SubmitAssessment(db, enrollment.ID, "final-exam", 75, 100)
	require.NoError(t, err)
	var done models.Enrollment
	require.NoError(t, db.First(&done, enrollment.ID).Error)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
}
