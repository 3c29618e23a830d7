package enrollmentRoutes

import (
	enrollmentControllers "edumitra/controllers/enrollment"
	"edumitra/middleware"
	"edumitra/models"
	enrollmentValidators "edumitra/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(app *fiber.App) {
	enrollGroup := app.Group("/enrollment", middleware.JWTMiddleware)

	enrollGroup.Post("/course/:id", enrollmentValidators.Enroll(), enrollmentControllers.EnrollInCourse)
	enrollGroup.Get("/list", enrollmentControllers.GetMyEnrollments)
	enrollGroup.Get("/:enrollment_id", enrollmentValidators.EnrollmentID(), enrollmentControllers.GetEnrollment)
	enrollGroup.Post("/:enrollment_id/cancel", enrollmentValidators.EnrollmentID(), enrollmentControllers.CancelEnrollment)

	// Lifecycle transitions (hold/resume/complete/expire) are staff-only.
	enrollGroup.Patch("/:enrollment_id/status",
		middleware.RequireRole(models.RoleAdmin),
		enrollmentValidators.Transition(), enrollmentControllers.TransitionEnrollment)
}
