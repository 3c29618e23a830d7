package paymentController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"edumitra/services"
	"edumitra/utils"
	"edumitra/validators/payment"
	"log"

	"github.com/gofiber/fiber/v2"
)

// CreatePaymentOrder opens a gateway order for an enrollment charge. In
// mock mode the order id is synthesized locally so the flow works without
// gateway credentials.
func CreatePaymentOrder(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedOrder").(*paymentValidator.OrderRequest)

	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}
	if enrollment.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only pay for your own enrollments!", nil)
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	order, err := utils.CreatePaymentOrder(enrollmentID, reqData.Amount, user.Name, user.Email)
	if err != nil {
		log.Printf("[PAYMENT] Gateway order creation failed for enrollment %d: %v", enrollmentID, err)
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to create payment order!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment order created!", fiber.Map{
		"orderId":     order.OrderID,
		"snapToken":   order.SnapToken,
		"redirectUrl": order.RedirectURL,
		"mock":        utils.IsMockOrder(order.OrderID),
	})
}

// RecordPayment appends a verified payment to an enrollment's ledger.
// Admin-only: regular flows go through the gateway webhook.
func RecordPayment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedPayment").(*paymentValidator.RecordRequest)

	db := database.Database.Db

	payment, err := services.RecordPayment(db, enrollmentID, services.PaymentInput{
		Amount:         reqData.Amount,
		Currency:       reqData.Currency,
		Method:         reqData.Method,
		TransactionID:  reqData.TransactionID,
		Status:         models.PaymentStatus(reqData.Status),
		Gateway:        reqData.Gateway,
		GatewayOrderID: reqData.GatewayOrderID,
		Notes:          reqData.Notes,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	if payment.Status == models.PaymentCompleted {
		var user models.User
		if db.Where("id = ?", payment.UserID).First(&user).Error == nil {
			utils.SendPaymentReceiptEmail(user.Email, user.Name, payment.Amount, payment.Currency)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment recorded successfully!", payment)
}

// RefundPayment records a refund against a completed charge.
func RefundPayment(c *fiber.Ctx) error {
	enrollmentID := c.Locals("enrollmentID").(uint)
	reqData := c.Locals("validatedRefund").(*paymentValidator.RefundRequest)

	refund, err := services.RefundPayment(database.Database.Db, enrollmentID, reqData.TransactionID, reqData.Reason)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Refund recorded successfully!", refund)
}

// GetPaymentHistory returns the ledger for an enrollment. Only the owning
// student or staff may see it.
func GetPaymentHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(uint)
	db := database.Database.Db

	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	role, _ := c.Locals("role").(string)
	if enrollment.UserID != userID && role != models.RoleAdmin && role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	payments, err := services.PaymentHistory(db, enrollmentID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment history fetched!", fiber.Map{
		"payments":        payments,
		"totalAmountPaid": enrollment.TotalAmountPaid,
		"nextPaymentDate": enrollment.NextPaymentDate,
	})
}

// PaymentWebhook receives gateway status notifications. The order id links
// the notification back to the recorded payment; unknown orders are
// acknowledged so the gateway stops retrying.
func PaymentWebhook(c *fiber.Ctx) error {
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payload!", nil)
	}

	orderID, ok1 := body["order_id"].(string)
	status, ok2 := body["transaction_status"].(string)
	if !ok1 || !ok2 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Incomplete webhook payload!", nil)
	}

	db := database.Database.Db

	var payment models.Payment
	if err := db.Where("gateway_order_id = ? AND is_deleted = false", orderID).First(&payment).Error; err != nil {
		log.Printf("[PAYMENT] Webhook for unknown order %s (status %s)", orderID, status)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Acknowledged.", nil)
	}

	var mapped models.PaymentStatus
	switch status {
	case "capture", "settlement":
		mapped = models.PaymentCompleted
	case "expire", "cancel", "deny":
		mapped = models.PaymentFailed
	default:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Acknowledged.", nil)
	}

	if err := services.SyncPaymentStatus(db, payment.ID, mapped); err != nil {
		log.Printf("[PAYMENT] Webhook sync failed for order %s: %v", orderID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process webhook!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status updated.", nil)
}
