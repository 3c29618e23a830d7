package paymentValidator

import (
	"edumitra/middleware"

	"github.com/gofiber/fiber/v2"
)

// RecordRequest is the verified payment fact handed to the ledger.
type RecordRequest struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Method         string  `json:"method"`
	TransactionID  string  `json:"transactionId"`
	Status         string  `json:"status"`
	Gateway        string  `json:"gateway"`
	GatewayOrderID string  `json:"gatewayOrderId"`
	Notes          string  `json:"notes"`
}

// RefundRequest identifies the charge to refund.
type RefundRequest struct {
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
}

// OrderRequest asks the gateway for a new payment order.
type OrderRequest struct {
	Amount float64 `json:"amount"`
}

// Record validates a payment recording payload
func Record() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RecordRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Amount <= 0 {
			errors["amount"] = "Amount must be greater than 0!"
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

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}

// Refund validates a refund payload
func Refund() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RefundRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.TransactionID == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"transactionId": "Transaction ID is required!",
			})
		}

		c.Locals("validatedRefund", reqData)
		return c.Next()
	}
}

// Order validates a gateway order request
func Order() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(OrderRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Amount <= 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"amount": "Amount must be greater than 0!",
			})
		}

		c.Locals("validatedOrder", reqData)
		return c.Next()
	}
}
