package courseRoutes

import (
	controllers "edumitra/controllers/course"
	"edumitra/middleware"
	validators "edumitra/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Catalog
	userGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	userGroup.Get("/certificates/mine", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourse)

	// Certificates
	userGroup.Post("/:id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)
}
