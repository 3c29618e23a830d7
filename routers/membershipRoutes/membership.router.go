package membershipRoutes

import (
	membershipControllers "edumitra/controllers/membership"
	"edumitra/middleware"
	membershipValidators "edumitra/validators/membership"

	"github.com/gofiber/fiber/v2"
)

func SetupMembershipRoutes(app *fiber.App) {
	memberGroup := app.Group("/membership", middleware.JWTMiddleware)

	memberGroup.Post("/subscribe", membershipValidators.Create(), membershipControllers.CreateMembership)
	memberGroup.Post("/upgrade", membershipValidators.Upgrade(), membershipControllers.UpgradeMembership)
	memberGroup.Post("/renew", membershipValidators.Renew(), membershipControllers.RenewMembership)
	memberGroup.Get("/me", membershipControllers.GetMyMembership)
}
