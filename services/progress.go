package services

import (
	"edumitra/models"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"
)

// LessonProgressInput is one progress fact reported for a lesson.
type LessonProgressInput struct {
	Status           string
	Percentage       float64
	TimeSpentSeconds int
}

// SequentialViolationDetails lists the curriculum items that must be
// completed first. Carried in ServiceError.Details.
type SequentialViolationDetails struct {
	BlockingLessonIDs []uint `json:"blocking_lesson_ids"`
}

// UpdateLessonProgress records per-lesson completion state, recomputes the
// enrollment's course-level summary and, when the completion criteria are
// met, auto-transitions the enrollment to COMPLETED. After the primary
// update commits, the same fact is mirrored into the analytics progress
// record; that mirror is best-effort and never rolls back the update.
func UpdateLessonProgress(db *gorm.DB, enrollmentID uint, lessonID uint, input LessonProgressInput) (*models.Enrollment, error) {
	if input.Status != models.LessonNotStarted && input.Status != models.LessonInProgress && input.Status != models.LessonCompleted {
		return nil, newError(KindInvalidEnrollmentStructure, fmt.Sprintf("unknown lesson status %q", input.Status))
	}

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
		}
		return nil, err
	}
	if enrollment.Status != models.StatusActive {
		return nil, newError(KindInvalidTransition,
			fmt.Sprintf("enrollment is %s, progress can only be recorded on active enrollments", enrollment.Status))
	}
	if enrollment.CourseID == nil {
		return nil, newError(KindInvalidEnrollmentStructure, "enrollment has no course curriculum")
	}

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", *enrollment.CourseID).First(&course).Error; err != nil {
		return nil, err
	}

	curriculum, err := curriculumLessons(db, course.ID)
	if err != nil {
		return nil, err
	}

	var lesson *models.Lesson
	lessonPos := -1
	for i := range curriculum {
		if curriculum[i].ID == lessonID {
			lesson = &curriculum[i]
			lessonPos = i
			break
		}
	}
	if lesson == nil {
		return nil, newError(KindNotFound, fmt.Sprintf("lesson %d not found in course %d", lessonID, course.ID))
	}

	// Sequential unlock: completing a lesson requires everything before it
	// in curriculum order to be completed already.
	if course.SequentialUnlock && input.Status == models.LessonCompleted && lessonPos > 0 {
		completed, err := completedLessonSet(db, enrollmentID)
		if err != nil {
			return nil, err
		}
		var blockers []uint
		for _, prior := range curriculum[:lessonPos] {
			if !completed[prior.ID] {
				blockers = append(blockers, prior.ID)
			}
		}
		if len(blockers) > 0 {
			return nil, &ServiceError{
				Kind:    KindSequentialViolation,
				Message: fmt.Sprintf("lesson %d is locked, %d earlier lessons are incomplete", lessonID, len(blockers)),
				Details: SequentialViolationDetails{BlockingLessonIDs: blockers},
			}
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var entry models.LessonProgress
		err := tx.Where("enrollment_id = ? AND lesson_id = ? AND is_deleted = false", enrollmentID, lessonID).
			First(&entry).Error
		switch err {
		case nil:
			entry.Status = input.Status
			entry.Percentage = input.Percentage
			entry.TimeSpentSeconds += input.TimeSpentSeconds
			entry.LastAccessed = &now
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		case gorm.ErrRecordNotFound:
			entry = models.LessonProgress{
				EnrollmentID:     enrollmentID,
				LessonID:         lessonID,
				Status:           input.Status,
				Percentage:       input.Percentage,
				TimeSpentSeconds: input.TimeSpentSeconds,
				LastAccessed:     &now,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return recomputeCourseProgress(tx, &enrollment, &course, len(curriculum))
	})
	if err != nil {
		return nil, err
	}

	mirrorLessonProgress(db, &enrollment, lesson, input)
	mirrorCourseProgress(db, &enrollment)

	return &enrollment, nil
}

// ResetLessonProgress puts a single lesson back to NOT_STARTED. An already
// granted course completion is deliberately left standing.
func ResetLessonProgress(db *gorm.DB, enrollmentID uint, lessonID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
		}
		return nil, err
	}
	if enrollment.CourseID == nil {
		return nil, newError(KindInvalidEnrollmentStructure, "enrollment has no course curriculum")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.LessonProgress{}).
			Where("enrollment_id = ? AND lesson_id = ? AND is_deleted = false", enrollmentID, lessonID).
			Updates(map[string]interface{}{
				"status":     models.LessonNotStarted,
				"percentage": 0,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(KindNotFound, fmt.Sprintf("no progress recorded for lesson %d", lessonID))
		}

		curriculum, err := curriculumLessons(tx, *enrollment.CourseID)
		if err != nil {
			return err
		}

		// Recompute the counters only; a COMPLETED enrollment stays completed.
		return recomputeSummaryOnly(tx, &enrollment, len(curriculum))
	})
	if err != nil {
		return nil, err
	}

	mirrorLessonProgress(db, &enrollment, &models.Lesson{Model: gorm.Model{ID: lessonID}},
		LessonProgressInput{Status: models.LessonNotStarted})
	mirrorCourseProgress(db, &enrollment)

	return &enrollment, nil
}

// SubmitAssessment upserts a quiz/assignment result for an enrollment and
// re-checks the completion gate when the course requires passing scores.
func SubmitAssessment(db *gorm.DB, enrollmentID uint, assessmentID string, score, maxScore float64) (*models.AssessmentResult, error) {
	if maxScore <= 0 || score < 0 || score > maxScore {
		return nil, newError(KindInvalidAssessment, "assessment score must be between 0 and max score")
	}

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
		}
		return nil, err
	}
	if enrollment.Status != models.StatusActive {
		return nil, newError(KindInvalidTransition,
			fmt.Sprintf("enrollment is %s, assessments can only be submitted on active enrollments", enrollment.Status))
	}
	if enrollment.CourseID == nil {
		return nil, newError(KindInvalidEnrollmentStructure, "enrollment has no course curriculum")
	}

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", *enrollment.CourseID).First(&course).Error; err != nil {
		return nil, err
	}

	passed := score/maxScore*100 >= float64(course.PassScorePercent)

	var result *models.AssessmentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var existing models.AssessmentResult
		err := tx.Where("enrollment_id = ? AND assessment_id = ? AND is_deleted = false", enrollmentID, assessmentID).
			First(&existing).Error
		switch err {
		case nil:
			existing.Score = score
			existing.MaxScore = maxScore
			existing.Passed = passed
			existing.Attempts++
			existing.LastAttemptAt = &now
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = &existing
		case gorm.ErrRecordNotFound:
			r := models.AssessmentResult{
				EnrollmentID:  enrollmentID,
				AssessmentID:  assessmentID,
				Score:         score,
				MaxScore:      maxScore,
				Passed:        passed,
				Attempts:      1,
				LastAttemptAt: &now,
			}
			if err := tx.Create(&r).Error; err != nil {
				return err
			}
			result = &r
		default:
			return err
		}

		// Passing the last required assessment can be what tips the
		// enrollment into completion.
		curriculum, err := curriculumLessons(tx, course.ID)
		if err != nil {
			return err
		}
		return recomputeCourseProgress(tx, &enrollment, &course, len(curriculum))
	})
	if err != nil {
		return nil, err
	}

	mirrorAssessmentResult(db, &enrollment, result)
	mirrorCourseProgress(db, &enrollment)

	return result, nil
}

func curriculumLessons(db *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := db.Where("course_id = ? AND is_published = true AND is_deleted = false", courseID).
		Order("order_index asc, id asc").
		Find(&lessons).Error
	return lessons, err
}

func completedLessonSet(db *gorm.DB, enrollmentID uint) (map[uint]bool, error) {
	var entries []models.LessonProgress
	err := db.Where("enrollment_id = ? AND status = ? AND is_deleted = false", enrollmentID, models.LessonCompleted).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(entries))
	for _, e := range entries {
		set[e.LessonID] = true
	}
	return set, nil
}

// recomputeCourseProgress rederives the embedded summary and applies the
// auto-completion rule.
func recomputeCourseProgress(tx *gorm.DB, enrollment *models.Enrollment, course *models.Course, totalLessons int) error {
	if err := recomputeSummaryOnly(tx, enrollment, totalLessons); err != nil {
		return err
	}

	if enrollment.Status != models.StatusActive {
		return nil
	}
	if enrollment.OverallPercentage < float64(course.CompletionThreshold) {
		return nil
	}

	if course.RequireAssessmentPass {
		var total, passed int64
		if err := tx.Model(&models.AssessmentResult{}).
			Where("enrollment_id = ? AND is_deleted = false", enrollment.ID).
			Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AssessmentResult{}).
			Where("enrollment_id = ? AND passed = true AND is_deleted = false", enrollment.ID).
			Count(&passed).Error; err != nil {
			return err
		}
		if total == 0 || passed < total {
			return nil
		}
	}

	now := time.Now()
	err := tx.Model(enrollment).Updates(map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": &now,
	}).Error
	if err != nil {
		return err
	}
	enrollment.Status = models.StatusCompleted
	enrollment.CompletedAt = &now
	return nil
}

func recomputeSummaryOnly(tx *gorm.DB, enrollment *models.Enrollment, totalLessons int) error {
	var completed int64
	err := tx.Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND status = ? AND is_deleted = false", enrollment.ID, models.LessonCompleted).
		Count(&completed).Error
	if err != nil {
		return err
	}

	percentage := 0.0
	if totalLessons > 0 {
		percentage = math.Round(float64(completed) / float64(totalLessons) * 100)
	}

	now := time.Now()
	err = tx.Model(enrollment).Updates(map[string]interface{}{
		"lessons_completed":  completed,
		"overall_percentage": percentage,
		"last_activity_date": &now,
	}).Error
	if err != nil {
		return err
	}
	enrollment.LessonsCompleted = int(completed)
	enrollment.OverallPercentage = percentage
	enrollment.LastActivityDate = &now
	return nil
}

// mirrorLessonProgress upserts the analytics-side record for a lesson.
// Failures are logged and swallowed: analytics availability must not block
// learning progress.
func mirrorLessonProgress(db *gorm.DB, enrollment *models.Enrollment, lesson *models.Lesson, input LessonProgressInput) {
	if enrollment.CourseID == nil {
		return
	}
	err := upsertProgressRecord(db, enrollment.UserID, *enrollment.CourseID, models.ContentTypeLesson, lesson.ID,
		input.Status, input.Percentage, input.TimeSpentSeconds)
	if err != nil {
		log.Printf("[PROGRESS] Failed to sync lesson progress record (user=%d lesson=%d): %v",
			enrollment.UserID, lesson.ID, err)
	}
}

// mirrorAssessmentResult upserts the quiz-level analytics record. The
// result row id keys the record, which stays stable across reattempts.
func mirrorAssessmentResult(db *gorm.DB, enrollment *models.Enrollment, result *models.AssessmentResult) {
	if enrollment.CourseID == nil || result == nil {
		return
	}
	status := models.LessonInProgress
	if result.Passed {
		status = models.LessonCompleted
	}
	percentage := 0.0
	if result.MaxScore > 0 {
		percentage = math.Round(result.Score / result.MaxScore * 100)
	}
	err := upsertProgressRecord(db, enrollment.UserID, *enrollment.CourseID, models.ContentTypeQuiz, result.ID,
		status, percentage, 0)
	if err != nil {
		log.Printf("[PROGRESS] Failed to sync assessment progress record (user=%d assessment=%s): %v",
			enrollment.UserID, result.AssessmentID, err)
	}
}

// mirrorCourseProgress upserts the course-level analytics record.
func mirrorCourseProgress(db *gorm.DB, enrollment *models.Enrollment) {
	if enrollment.CourseID == nil {
		return
	}
	status := models.LessonInProgress
	if enrollment.Status == models.StatusCompleted {
		status = models.LessonCompleted
	}
	err := upsertProgressRecord(db, enrollment.UserID, *enrollment.CourseID, models.ContentTypeCourse, *enrollment.CourseID,
		status, enrollment.OverallPercentage, 0)
	if err != nil {
		log.Printf("[PROGRESS] Failed to sync course progress record (user=%d course=%d): %v",
			enrollment.UserID, *enrollment.CourseID, err)
	}
}

func upsertProgressRecord(db *gorm.DB, userID, courseID uint, contentType string, contentID uint,
	status string, percentage float64, timeSpent int) error {
	now := time.Now()

	var record models.ProgressRecord
	err := db.Where("user_id = ? AND course_id = ? AND content_type = ? AND content_id = ? AND is_deleted = false",
		userID, courseID, contentType, contentID).First(&record).Error
	switch err {
	case nil:
		record.Status = status
		record.Percentage = percentage
		record.TimeSpentSeconds += timeSpent
		record.LastAccessed = &now
		return db.Save(&record).Error
	case gorm.ErrRecordNotFound:
		record = models.ProgressRecord{
			UserID:           userID,
			CourseID:         courseID,
			ContentType:      contentType,
			ContentID:        contentID,
			Status:           status,
			Percentage:       percentage,
			TimeSpentSeconds: timeSpent,
			LastAccessed:     &now,
		}
		return db.Create(&record).Error
	default:
		return err
	}
}
