package middleware

import (
	"edumitra/services"
	"log"

	"github.com/gofiber/fiber/v2"
)

// statusForKind maps engine error kinds to HTTP statuses. Capacity,
// duplicate and sequential rejections are expected business outcomes, not
// server failures.
var statusForKind = map[services.ErrorKind]int{
	services.KindNotFound:                   fiber.StatusNotFound,
	services.KindCapacityExceeded:           fiber.StatusConflict,
	services.KindDuplicateEnrollment:        fiber.StatusConflict,
	services.KindMembershipAlreadyActive:    fiber.StatusConflict,
	services.KindSequentialViolation:        fiber.StatusConflict,
	services.KindInvalidEnrollmentStructure: fiber.StatusBadRequest,
	services.KindInvalidPayment:             fiber.StatusBadRequest,
	services.KindInvalidAssessment:          fiber.StatusBadRequest,
	services.KindInvalidTierTransition:      fiber.StatusBadRequest,
	services.KindInvalidTransition:          fiber.StatusBadRequest,
	services.KindConfigurationError:         fiber.StatusUnprocessableEntity,
}

// ServiceErrorResponse translates an engine error into the standard JSON
// envelope. Unclassified errors are logged and surfaced as a 500.
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	if svcErr := services.AsServiceError(err); svcErr != nil {
		status, ok := statusForKind[svcErr.Kind]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return JsonResponse(c, status, false, svcErr.Message, svcErr.Details)
	}

	log.Printf("[HTTP] Unhandled service error: %v", err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}
