package paymentRoutes

import (
	paymentControllers "edumitra/controllers/payment"
	"edumitra/middleware"
	"edumitra/models"
	enrollmentValidators "edumitra/validators/enrollment"
	paymentValidators "edumitra/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App) {
	payGroup := app.Group("/payment")

	// Gateway webhook carries its own verification, no JWT.
	payGroup.Post("/webhook", paymentControllers.PaymentWebhook)

	payGroup.Post("/enrollment/:enrollment_id/order",
		middleware.JWTMiddleware,
		enrollmentValidators.EnrollmentID(), paymentValidators.Order(),
		paymentControllers.CreatePaymentOrder)

	payGroup.Get("/enrollment/:enrollment_id/history",
		middleware.JWTMiddleware,
		enrollmentValidators.EnrollmentID(),
		paymentControllers.GetPaymentHistory)

	// Manual ledger writes are staff-only.
	payGroup.Post("/enrollment/:enrollment_id/record",
		middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		enrollmentValidators.EnrollmentID(), paymentValidators.Record(),
		paymentControllers.RecordPayment)

	payGroup.Post("/enrollment/:enrollment_id/refund",
		middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin),
		enrollmentValidators.EnrollmentID(), paymentValidators.Refund(),
		paymentControllers.RefundPayment)
}
