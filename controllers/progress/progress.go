package progressController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"edumitra/services"
	"edumitra/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func ownedEnrollment(c *fiber.Ctx, enrollmentID uint) (*models.Enrollment, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollment models.Enrollment
	if err := database.Database.Db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	role, _ := c.Locals("role").(string)
	if enrollment.UserID != userID && role != models.RoleAdmin && role != models.RoleInstructor {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}
	return &enrollment, nil
}

// UpdateLessonProgress advances one lesson for the student's enrollment.
func UpdateLessonProgress(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	lessonID := c.Locals("lessonID").(uint)
	reqData := c.Locals("validatedLessonUpdate").(*progressValidator.LessonUpdateRequest)

	if _, err := ownedEnrollment(c, enrollmentID); err != nil {
		return err
	}

	updated, err := services.UpdateLessonProgress(database.Database.Db, enrollmentID, lessonID,
		services.LessonProgressInput{
			Status:           reqData.Status,
			Percentage:       reqData.Percentage,
			TimeSpentSeconds: reqData.TimeSpentSeconds,
		})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress updated!", updated)
}

// GetCourseProgress returns the per-lesson breakdown and overall summary.
func GetCourseProgress(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)

	enrollment, err := ownedEnrollment(c, enrollmentID)
	if err != nil {
		return err
	}

	db := database.Database.Db

	var entries []models.LessonProgress
	if err := db.Where("enrollment_id = ? AND is_deleted = false", enrollmentID).
		Order("lesson_id asc").Find(&entries).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	var assessments []models.AssessmentResult
	db.Where("enrollment_id = ? AND is_deleted = false", enrollmentID).Find(&assessments)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"overallPercentage": enrollment.OverallPercentage,
		"lessonsCompleted":  enrollment.LessonsCompleted,
		"status":            enrollment.Status,
		"completedAt":       enrollment.CompletedAt,
		"lessons":           entries,
		"assessments":       assessments,
	})
}

// ResetLessonProgress puts a lesson back to NOT_STARTED. Admin-only; a
// completed enrollment stays completed.
func ResetLessonProgress(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	lessonID := c.Locals("lessonID").(uint)

	updated, err := services.ResetLessonProgress(database.Database.Db, enrollmentID, lessonID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress reset!", updated)
}

// SubmitAssessment records a graded attempt for the student's enrollment.
func SubmitAssessment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedAssessment").(*progressValidator.AssessmentRequest)

	if _, err := ownedEnrollment(c, enrollmentID); err != nil {
		return err
	}

	result, err := services.SubmitAssessment(database.Database.Db, enrollmentID,
		reqData.AssessmentID, reqData.Score, reqData.MaxScore)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assessment submitted!", result)
}
