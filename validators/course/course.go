package courseValidator

import (
	"edumitra/middleware"
	"edumitra/models"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CourseRequest is the admin course create/update payload.
type CourseRequest struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	InstructorID          uint   `json:"instructorId"`
	ThumbnailURL          string `json:"thumbnail_url"`
	AccessDurationDays    int    `json:"accessDurationDays"`
	SequentialUnlock      bool   `json:"sequentialUnlock"`
	CompletionThreshold   int    `json:"completionThreshold"`
	RequireAssessmentPass bool   `json:"requireAssessmentPass"`
	PassScorePercent      int    `json:"passScorePercent"`
}

// PricingRequest sets the per-currency price configuration.
type PricingRequest struct {
	Currency          string     `json:"currency"`
	IndividualPrice   float64    `json:"individualPrice"`
	BatchPrice        float64    `json:"batchPrice"`
	EarlyBirdDiscount float64    `json:"earlyBirdDiscount"`
	EarlyBirdUntil    *time.Time `json:"earlyBirdUntil"`
	GroupDiscountPct  float64    `json:"groupDiscountPct"`
	GroupMinSize      int        `json:"groupMinSize"`
}

// BatchRequest opens a new batch.
type BatchRequest struct {
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`
	Capacity  int       `json:"capacity"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// LessonRequest appends a curriculum item.
type LessonRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  int    `json:"orderIndex"`
	IsPublished bool   `json:"isPublished"`
}

// CourseID validates the :id path parameter
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", id)
		return c.Next()
	}
}

// CreateCourse validates the course create/update payload
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		} else if len(strings.TrimSpace(reqData.Description)) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if reqData.AccessDurationDays < 0 {
			errors["accessDurationDays"] = "Access duration cannot be negative!"
		}
		if reqData.CompletionThreshold < 0 || reqData.CompletionThreshold > 100 {
			errors["completionThreshold"] = "Completion threshold must be between 0 and 100!"
		}
		if reqData.PassScorePercent < 0 || reqData.PassScorePercent > 100 {
			errors["passScorePercent"] = "Pass score must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// Pricing validates the pricing upsert payload
func Pricing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(PricingRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Currency) == "" {
			errors["currency"] = "Currency is required!"
		}
		if reqData.IndividualPrice < 0 {
			errors["individualPrice"] = "Individual price cannot be negative!"
		}
		if reqData.BatchPrice < 0 {
			errors["batchPrice"] = "Batch price cannot be negative!"
		}
		if reqData.EarlyBirdDiscount < 0 {
			errors["earlyBirdDiscount"] = "Early bird discount cannot be negative!"
		}
		if reqData.GroupDiscountPct < 0 || reqData.GroupDiscountPct > 100 {
			errors["groupDiscountPct"] = "Group discount must be between 0 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPricing", reqData)
		return c.Next()
	}
}

// Batch validates the batch creation payload
func Batch() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BatchRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Batch name is required!"
		}
		if reqData.Mode != models.BatchModeOneToOne && reqData.Mode != models.BatchModeGroup {
			errors["mode"] = "Mode must be ONE_TO_ONE or GROUP!"
		}
		if reqData.Mode == models.BatchModeGroup && reqData.Capacity < 2 {
			errors["capacity"] = "Group batches need a capacity of at least 2!"
		}
		if !reqData.EndDate.After(reqData.StartDate) {
			errors["endDate"] = "End date must be after start date!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedBatch", reqData)
		return c.Next()
	}
}

// Lesson validates the lesson creation payload
func Lesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.OrderIndex < 0 {
			errors["orderIndex"] = "Order index cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}
