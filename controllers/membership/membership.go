package membershipController

import (
	"edumitra/database"
	"edumitra/middleware"
	"edumitra/models"
	"edumitra/services"
	"edumitra/utils"
	"edumitra/validators/membership"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CreateMembership subscribes the authenticated user to a tier. The first
// subscription payment is recorded at the tier's list price.
func CreateMembership(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedMembership").(*membershipValidator.CreateRequest)
	db := database.Database.Db

	tier, err := services.TierByName(reqData.Tier)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	enrollment, err := services.CreateMembership(db, services.MembershipInput{
		UserID:      userID,
		Tier:        reqData.Tier,
		Currency:    reqData.Currency,
		AutoRenewal: reqData.AutoRenewal,
		Payment: services.PaymentInput{
			Amount:        tier.Prices[reqData.Currency],
			Currency:      reqData.Currency,
			Method:        reqData.Method,
			TransactionID: reqData.TransactionID,
		},
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	var user models.User
	if db.Where("id = ?", userID).First(&user).Error == nil {
		info := enrollment.MembershipInfo.Data()
		utils.SendMembershipEmail(user.Email, user.Name, info.MembershipType, info.EndDate)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Membership activated successfully!", enrollment)
}

// UpgradeMembership moves the user's active membership to a higher tier.
func UpgradeMembership(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedUpgrade").(*membershipValidator.UpgradeRequest)

	enrollment, err := services.UpgradeMembership(database.Database.Db, userID, reqData.Tier)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership upgraded successfully!", enrollment)
}

// RenewMembership extends the active membership from its current end date.
// The renewal charge is the current tier's list price in the original
// subscription currency.
func RenewMembership(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedRenew").(*membershipValidator.RenewRequest)
	db := database.Database.Db

	var current models.Enrollment
	err := db.Where("user_id = ? AND enrollment_type = ? AND status = ? AND is_deleted = false",
		userID, models.EnrollmentMembership, models.StatusActive).
		First(&current).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active membership found!", nil)
	}

	info := current.MembershipInfo.Data()
	currency := current.PricingSnapshot.Data().Currency

	tier, err := services.TierByName(info.MembershipType)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	enrollment, err := services.RenewMembership(db, userID, reqData.Months, services.PaymentInput{
		Amount:        tier.Prices[currency],
		Currency:      currency,
		Method:        reqData.Method,
		TransactionID: reqData.TransactionID,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership renewed successfully!", enrollment)
}

// GetMyMembership returns the user's active membership with its derived
// state (ACTIVE, EXPIRING_SOON or EXPIRED).
func GetMyMembership(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var enrollment models.Enrollment
	err := db.Where("user_id = ? AND enrollment_type = ? AND status = ? AND is_deleted = false",
		userID, models.EnrollmentMembership, models.StatusActive).
		Order("created_at desc").First(&enrollment).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No active membership found!", nil)
	}

	info := enrollment.MembershipInfo.Data()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Membership fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"state":      services.MembershipState(info, time.Now()),
		"benefits":   info.Benefits,
	})
}
