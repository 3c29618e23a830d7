package authRoutes

import (
	authControllers "edumitra/controllers/auth"
	"edumitra/middleware"
	authValidators "edumitra/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Put("/profile-image", middleware.JWTMiddleware, authControllers.UploadProfileImage)
}
