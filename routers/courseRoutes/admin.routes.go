package courseRoutes

import (
	controllers "edumitra/controllers/course"
	"edumitra/middleware"
	"edumitra/models"
	validators "edumitra/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course",
		middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), controllers.AdminCreateCourse)
	adminGroup.Put("/:id", validators.CourseID(), validators.CreateCourse(), controllers.AdminUpdateCourse)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)

	// Pricing
	adminGroup.Put("/:id/pricing", validators.CourseID(), validators.Pricing(), controllers.AdminUpsertPricing)

	// Batches
	adminGroup.Post("/:id/batch", validators.CourseID(), validators.Batch(), controllers.AdminCreateBatch)

	// Curriculum
	adminGroup.Post("/:id/lesson", validators.CourseID(), validators.Lesson(), controllers.AdminCreateLesson)
}
