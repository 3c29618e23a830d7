package progressRoutes

import (
	progressControllers "edumitra/controllers/progress"
	"edumitra/middleware"
	"edumitra/models"
	enrollmentValidators "edumitra/validators/enrollment"
	progressValidators "edumitra/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App) {
	progressGroup := app.Group("/progress", middleware.JWTMiddleware)

	progressGroup.Put("/enrollment/:enrollment_id/lesson/:lesson_id",
		progressValidators.LessonUpdate(), progressControllers.UpdateLessonProgress)

	progressGroup.Get("/enrollment/:enrollment_id",
		enrollmentValidators.EnrollmentID(), progressControllers.GetCourseProgress)

	progressGroup.Post("/enrollment/:enrollment_id/assessment",
		progressValidators.Assessment(), progressControllers.SubmitAssessment)

	progressGroup.Delete("/enrollment/:enrollment_id/lesson/:lesson_id",
		middleware.RequireRole(models.RoleAdmin),
		progressValidators.LessonReset(), progressControllers.ResetLessonProgress)
}
