package enrollmentController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"edumitra/services"
	"edumitra/utils"
	"edumitra/validators/enrollment"
	"log"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse admits the authenticated student into a course offering.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)
	reqData, ok := c.Locals("validatedEnroll").(*enrollmentValidator.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	enrollment, err := services.CreateEnrollment(db, services.EnrollmentInput{
		UserID:            userID,
		CourseID:          uint(courseID),
		BatchID:           reqData.BatchID,
		EnrollmentType:    models.EnrollmentType(reqData.EnrollmentType),
		Currency:          reqData.Currency,
		DiscountCode:      reqData.DiscountCode,
		DiscountAmount:    reqData.DiscountAmount,
		BatchSize:         reqData.BatchSize,
		IsBatchLeader:     reqData.IsBatchLeader,
		BatchMembers:      reqData.BatchMembers,
		PaymentPlan:       models.PaymentPlan(reqData.PaymentPlan),
		InstallmentsCount: reqData.InstallmentsCount,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	// Best-effort side effects; the enrollment stands even if these fail.
	if _, err := utils.EnsureStudentWorkspace(db, userID); err != nil {
		log.Printf("[ENROLLMENT] Workspace provisioning failed for student %d: %v", userID, err)
	}

	var user models.User
	var course models.Course
	if db.Where("id = ?", userID).First(&user).Error == nil &&
		db.Where("id = ?", courseID).First(&course).Error == nil {
		utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, enrollment.AccessExpiryDate)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetMyEnrollments lists the authenticated student's enrollments.
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	query := db.Model(&models.Enrollment{}).Where("user_id = ? AND is_deleted = false", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var enrollments []models.Enrollment
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// CancelEnrollment lets a student cancel their own enrollment; the batch
// seat is released in the same transaction.
func CancelEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if enrollment.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only cancel your own enrollments!", nil)
	}

	updated, err := services.TransitionEnrollment(db, enrollmentID, models.StatusCancelled)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled successfully!", updated)
}

// TransitionEnrollment is the admin path for lifecycle transitions
// (hold/resume/complete/expire).
func TransitionEnrollment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	targetStatus := c.Locals("targetStatus").(models.EnrollmentStatus)

	updated, err := services.TransitionEnrollment(database.Database.Db, enrollmentID, targetStatus)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment updated successfully!", updated)
}

// GetEnrollment returns one enrollment; owners see their own, staff see any.
func GetEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	role, _ := c.Locals("role").(string)
	if enrollment.UserID != userID && role != models.RoleAdmin && role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment fetched successfully!", enrollment)
}
