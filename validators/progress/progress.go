package progressValidator

import (
	"edumitra/middleware"
	"edumitra/models"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LessonUpdateRequest moves one lesson's status forward.
type LessonUpdateRequest struct {
	Status           string  `json:"status"`
	Percentage       float64 `json:"percentage"`
	TimeSpentSeconds int     `json:"timeSpentSeconds"`
}

// AssessmentRequest records a graded attempt.
type AssessmentRequest struct {
	AssessmentID string  `json:"assessmentId"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"maxScore"`
}

var lessonStatuses = map[string]bool{
	models.LessonNotStarted: true,
	models.LessonInProgress: true,
	models.LessonCompleted:  true,
}

func parseID(c *fiber.Ctx, param string) (uint, bool) {
	idStr := strings.TrimSpace(c.Params(param))
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// LessonUpdate validates the lesson progress payload and path parameters
func LessonUpdate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseID(c, "enrollment_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}
		lessonID, ok := parseID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(LessonUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if !lessonStatuses[reqData.Status] {
			errors["status"] = "Unknown lesson status!"
		}
		if reqData.Percentage < 0 || reqData.Percentage > 100 {
			errors["percentage"] = "Percentage must be between 0 and 100!"
		}
		if reqData.TimeSpentSeconds < 0 {
			errors["timeSpentSeconds"] = "Time spent cannot be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// LessonReset validates the path parameters for a progress reset
func LessonReset() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseID(c, "enrollment_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}
		lessonID, ok := parseID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// Assessment validates a graded attempt payload
func Assessment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, ok := parseID(c, "enrollment_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		reqData := new(AssessmentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if strings.TrimSpace(reqData.AssessmentID) == "" {
			errors["assessmentId"] = "Assessment ID is required!"
		}
		if reqData.MaxScore <= 0 {
			errors["maxScore"] = "Max score must be greater than 0!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedAssessment", reqData)
		return c.Next()
	}
}
