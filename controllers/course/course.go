package courseController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists published courses with pagination.
func GetAllCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db

	query := db.Model(&models.Course{}).Where("is_published = true AND is_deleted = false")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var courses []models.Course
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetCourse returns a course with its pricing options, published lessons
// and open batches.
func GetCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	db := database.Database.Db

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", courseID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var pricing []models.CoursePricing
	db.Where("course_id = ? AND is_deleted = false", courseID).Find(&pricing)

	var lessons []models.Lesson
	db.Where("course_id = ? AND is_published = true AND is_deleted = false", courseID).
		Order("order_index asc").Find(&lessons)

	var batches []models.Batch
	db.Where("course_id = ? AND is_deleted = false AND enrolled_students < capacity", courseID).
		Find(&batches)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":  course,
		"pricing": pricing,
		"lessons": lessons,
		"batches": batches,
	})
}
