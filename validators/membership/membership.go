package membershipValidator

import (
	"edumitra/middleware"
	"edumitra/services"

	"github.com/gofiber/fiber/v2"
)

// CreateRequest starts a membership subscription.
type CreateRequest struct {
	Tier          string `json:"tier"`
	Currency      string `json:"currency"`
	AutoRenewal   bool   `json:"autoRenewal"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

// UpgradeRequest moves an active membership to a higher tier.
type UpgradeRequest struct {
	Tier string `json:"tier"`
}

// RenewRequest extends an active membership.
type RenewRequest struct {
	Months        int    `json:"months"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

// Create validates a membership subscription payload
func Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if _, err := services.TierByName(reqData.Tier); err != nil {
			errors["tier"] = "Unknown membership tier!"
		}
		if reqData.Currency == "" {
			errors["currency"] = "Currency is required!"
		}
		if reqData.Method == "" {
			errors["method"] = "Payment method is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedMembership", reqData)
		return c.Next()
	}
}

// Upgrade validates a tier upgrade payload
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpgradeRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if _, err := services.TierByName(reqData.Tier); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"tier": "Unknown membership tier!",
			})
		}

		c.Locals("validatedUpgrade", reqData)
		return c.Next()
	}
}

// Renew validates a renewal payload
func Renew() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RenewRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.Months < 0 {
			errors["months"] = "Months cannot be negative!"
		}
		if reqData.Method == "" {
			errors["method"] = "Payment method is required!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRenew", reqData)
		return c.Next()
	}
}
