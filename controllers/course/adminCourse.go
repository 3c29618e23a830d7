package courseController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"edumitra/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AdminCreateCourse creates a new course in draft state.
func AdminCreateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourse").(*courseValidator.CourseRequest)

	course := models.Course{
		Title:                 reqData.Title,
		Description:           reqData.Description,
		InstructorID:          reqData.InstructorID,
		ThumbnailURL:          reqData.ThumbnailURL,
		AccessDurationDays:    reqData.AccessDurationDays,
		SequentialUnlock:      reqData.SequentialUnlock,
		CompletionThreshold:   reqData.CompletionThreshold,
		RequireAssessmentPass: reqData.RequireAssessmentPass,
		PassScorePercent:      reqData.PassScorePercent,
		Status:                models.CourseDraft,
	}
	if course.AccessDurationDays == 0 {
		course.AccessDurationDays = 365
	}
	if course.CompletionThreshold == 0 {
		course.CompletionThreshold = 100
	}
	if course.PassScorePercent == 0 {
		course.PassScorePercent = 50
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates course settings.
func AdminUpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedCourse").(*courseValidator.CourseRequest)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.Title = reqData.Title
	course.Description = reqData.Description
	course.ThumbnailURL = reqData.ThumbnailURL
	course.SequentialUnlock = reqData.SequentialUnlock
	course.RequireAssessmentPass = reqData.RequireAssessmentPass
	if reqData.InstructorID != 0 {
		course.InstructorID = reqData.InstructorID
	}
	if reqData.AccessDurationDays > 0 {
		course.AccessDurationDays = reqData.AccessDurationDays
	}
	if reqData.CompletionThreshold > 0 {
		course.CompletionThreshold = reqData.CompletionThreshold
	}
	if reqData.PassScorePercent > 0 {
		course.PassScorePercent = reqData.PassScorePercent
	}

	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminPublishCourse flips a course live.
func AdminPublishCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	course.IsPublished = true
	course.Status = models.CourseActive
	if err := db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to publish course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course published successfully!", course)
}

// AdminUpsertPricing creates or replaces the pricing row for one currency.
func AdminUpsertPricing(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedPricing").(*courseValidator.PricingRequest)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var pricing models.CoursePricing
	err := db.Where("course_id = ? AND currency = ? AND is_deleted = false", courseID, reqData.Currency).
		First(&pricing).Error
	if err != nil {
		pricing = models.CoursePricing{CourseID: uint(courseID), Currency: reqData.Currency}
	}

	pricing.IndividualPrice = reqData.IndividualPrice
	pricing.BatchPrice = reqData.BatchPrice
	pricing.EarlyBirdDiscount = reqData.EarlyBirdDiscount
	pricing.EarlyBirdUntil = reqData.EarlyBirdUntil
	pricing.GroupDiscountPct = reqData.GroupDiscountPct
	pricing.GroupMinSize = reqData.GroupMinSize

	if err := db.Save(&pricing).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save pricing!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pricing saved successfully!", pricing)
}

// AdminCreateBatch opens a new batch for a course. One-to-one batches
// always get capacity 1 regardless of the requested value.
func AdminCreateBatch(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedBatch").(*courseValidator.BatchRequest)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	capacity := reqData.Capacity
	if reqData.Mode == models.BatchModeOneToOne {
		capacity = 1
	}

	batch := models.Batch{
		CourseID:  uint(courseID),
		Name:      reqData.Name,
		Mode:      reqData.Mode,
		Capacity:  capacity,
		StartDate: reqData.StartDate,
		EndDate:   reqData.EndDate,
		Status:    models.BatchScheduled,
	}

	if err := db.Create(&batch).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create batch!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Batch created successfully!", batch)
}

// AdminCreateLesson appends a lesson to the course curriculum.
func AdminCreateLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedLesson").(*courseValidator.LessonRequest)

	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	lesson := models.Lesson{
		CourseID:    uint(courseID),
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
		IsPublished: reqData.IsPublished,
	}

	if err := db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}
