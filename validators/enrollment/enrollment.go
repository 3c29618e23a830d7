package enrollmentValidator

import (
	"edumitra/middleware"
	"edumitra/models"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// EnrollRequest is the admission payload.
type EnrollRequest struct {
	EnrollmentType    string  `json:"enrollmentType"`
	BatchID           *uint   `json:"batchId"`
	Currency          string  `json:"currency"`
	DiscountCode      string  `json:"discountCode"`
	DiscountAmount    float64 `json:"discountAmount"`
	BatchSize         int     `json:"batchSize"`
	IsBatchLeader     bool    `json:"isBatchLeader"`
	BatchMembers      []uint  `json:"batchMembers"`
	PaymentPlan       string  `json:"paymentPlan"`
	InstallmentsCount int     `json:"installmentsCount"`
}

var enrollmentTypes = map[string]bool{
	string(models.EnrollmentIndividual):  true,
	string(models.EnrollmentBatch):       true,
	string(models.EnrollmentCorporate):   true,
	string(models.EnrollmentGroup):       true,
	string(models.EnrollmentScholarship): true,
	string(models.EnrollmentTrial):       true,
}

var paymentPlans = map[string]bool{
	string(models.PlanFull):        true,
	string(models.PlanInstallment): true,
	string(models.PlanFree):        true,
	string(models.PlanScholarship): true,
}

// Enroll validates the course id param and admission payload
func Enroll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(EnrollRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.EnrollmentType == "" {
			reqData.EnrollmentType = string(models.EnrollmentIndividual)
		}
		if !enrollmentTypes[reqData.EnrollmentType] {
			errors["enrollmentType"] = "Unknown enrollment type!"
		}
		if reqData.Currency == "" {
			errors["currency"] = "Currency is required!"
		}
		if reqData.EnrollmentType == string(models.EnrollmentBatch) && reqData.BatchID == nil {
			errors["batchId"] = "Batch ID is required for batch enrollments!"
		}
		if reqData.DiscountAmount < 0 {
			errors["discountAmount"] = "Discount amount cannot be negative!"
		}
		if reqData.PaymentPlan != "" && !paymentPlans[reqData.PaymentPlan] {
			errors["paymentPlan"] = "Unknown payment plan!"
		}
		if reqData.PaymentPlan == string(models.PlanInstallment) && reqData.InstallmentsCount < 2 {
			errors["installmentsCount"] = "Installment plan requires at least 2 installments!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedEnroll", reqData)
		return c.Next()
	}
}

// EnrollmentID validates the :enrollment_id path parameter
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("enrollment_id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", uint(id))
		return c.Next()
	}
}

// Transition validates an admin status-transition payload
func Transition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("enrollment_id"))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		reqData := new(struct {
			Status string `json:"status"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		status := models.EnrollmentStatus(reqData.Status)
		switch status {
		case models.StatusActive, models.StatusCompleted, models.StatusCancelled,
			models.StatusOnHold, models.StatusExpired:
		default:
			return middleware.ValidationErrorResponse(c, map[string]string{"status": "Unknown enrollment status!"})
		}

		c.Locals("enrollmentID", uint(id))
		c.Locals("targetStatus", status)
		return c.Next()
	}
}
