package services

import (
	"edumitra/models"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Derived membership states
const (
	MembershipActive       = "ACTIVE"
	MembershipExpiringSoon = "EXPIRING_SOON"
	MembershipExpired      = "EXPIRED"
)

// ExpiringSoonDays is the window before end_date in which a membership is
// reported as EXPIRING_SOON.
const ExpiringSoonDays = 30

// MembershipTier is tier-defined static data. Benefits are snapshotted onto
// the enrollment at assignment time; the tier table itself is not stored
// per student.
type MembershipTier struct {
	Name            string
	Rank            int // strictly increasing; upgrades must move up
	DurationMonths  int
	Prices          map[string]float64
	Benefits        []string
	DiscountPercent int
	PrioritySupport bool
	CategoryScope   string
}

var membershipTiers = map[string]MembershipTier{
	"BASIC": {
		Name: "BASIC", Rank: 1, DurationMonths: 3,
		Prices:          map[string]float64{"INR": 1999, "USD": 29},
		Benefits:        []string{"starter_category_access", "community_forum"},
		DiscountPercent: 0, CategoryScope: "STARTER",
	},
	"STANDARD": {
		Name: "STANDARD", Rank: 2, DurationMonths: 6,
		Prices:          map[string]float64{"INR": 4999, "USD": 69},
		Benefits:        []string{"all_category_access", "community_forum", "course_discount_10"},
		DiscountPercent: 10, CategoryScope: "ALL",
	},
	"PREMIUM": {
		Name: "PREMIUM", Rank: 3, DurationMonths: 12,
		Prices:          map[string]float64{"INR": 8999, "USD": 119},
		Benefits:        []string{"all_category_access", "community_forum", "course_discount_20", "priority_support"},
		DiscountPercent: 20, PrioritySupport: true, CategoryScope: "ALL",
	},
	"ELITE": {
		Name: "ELITE", Rank: 4, DurationMonths: 12,
		Prices:          map[string]float64{"INR": 14999, "USD": 199},
		Benefits:        []string{"all_category_access", "community_forum", "course_discount_30", "priority_support", "mentor_sessions"},
		DiscountPercent: 30, PrioritySupport: true, CategoryScope: "ALL",
	},
}

// TierByName looks up a membership tier definition.
func TierByName(name string) (MembershipTier, error) {
	tier, ok := membershipTiers[name]
	if !ok {
		return MembershipTier{}, newError(KindConfigurationError, fmt.Sprintf("unknown membership tier %s", name))
	}
	return tier, nil
}

// MembershipState derives the display state from the membership window.
func MembershipState(info models.MembershipInfo, now time.Time) string {
	if !now.Before(info.EndDate) {
		return MembershipExpired
	}
	if info.EndDate.Sub(now) <= ExpiringSoonDays*24*time.Hour {
		return MembershipExpiringSoon
	}
	return MembershipActive
}

// MembershipInput describes a membership purchase.
type MembershipInput struct {
	UserID      uint
	Tier        string
	Currency    string
	AutoRenewal bool
	Payment     PaymentInput
}

// CreateMembership starts a time-boxed membership for a student. A student
// may hold at most one active membership; the application pre-check is
// backed by a partial unique index on the store, so two concurrent creates
// cannot both slip through.
func CreateMembership(db *gorm.DB, input MembershipInput) (*models.Enrollment, error) {
	tier, err := TierByName(input.Tier)
	if err != nil {
		return nil, err
	}
	price, ok := tier.Prices[input.Currency]
	if !ok {
		return nil, newError(KindConfigurationError,
			fmt.Sprintf("no pricing configured for currency %s on tier %s", input.Currency, input.Tier))
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = false", input.UserID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("student %d not found", input.UserID))
		}
		return nil, err
	}
	if user.IsDeactivated {
		return nil, newError(KindNotFound, fmt.Sprintf("student %d account is deactivated", input.UserID))
	}

	var enrollment *models.Enrollment
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND enrollment_type = ? AND status = ? AND is_deleted = false",
				input.UserID, models.EnrollmentMembership, models.StatusActive).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return newError(KindMembershipAlreadyActive, "student already holds an active membership")
		}

		now := time.Now()
		info := models.MembershipInfo{
			MembershipType: tier.Name,
			DurationMonths: tier.DurationMonths,
			StartDate:      now,
			EndDate:        now.AddDate(0, tier.DurationMonths, 0),
			AutoRenewal:    input.AutoRenewal,
			Benefits:       tier.Benefits,
		}

		e := models.Enrollment{
			UserID:           input.UserID,
			EnrollmentType:   models.EnrollmentMembership,
			Status:           models.StatusActive,
			AccessExpiryDate: info.EndDate,
			MembershipInfo:   datatypes.NewJSONType(info),
			PaymentPlan:      models.PlanSubscription,
			PricingSnapshot: datatypes.NewJSONType(models.PricingSnapshot{
				OriginalPrice: price,
				FinalPrice:    price,
				Currency:      input.Currency,
				PricingType:   models.PricingMembership,
			}),
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}

		if err := tx.Model(&user).Update("membership_tier", tier.Name).Error; err != nil {
			return err
		}

		// First payment goes through the regular ledger path, inside the
		// same transaction: a rejected payment rolls the membership back
		// rather than leaving it active with an empty ledger.
		if input.Payment.Amount > 0 {
			if _, err := RecordPayment(tx, e.ID, input.Payment); err != nil {
				return err
			}
		}

		enrollment = &e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// UpgradeMembership moves the student's active membership to a strictly
// higher tier, replacing the benefit snapshot and recording where the
// membership came from.
func UpgradeMembership(db *gorm.DB, userID uint, newTierName string) (*models.Enrollment, error) {
	newTier, err := TierByName(newTierName)
	if err != nil {
		return nil, err
	}

	var enrollment models.Enrollment
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := activeMembership(tx, userID, &enrollment); err != nil {
			return err
		}

		info := enrollment.MembershipInfo.Data()
		currentTier, err := TierByName(info.MembershipType)
		if err != nil {
			return err
		}
		if newTier.Rank <= currentTier.Rank {
			return newError(KindInvalidTierTransition,
				fmt.Sprintf("cannot move from %s to %s, upgrades must be to a higher tier", currentTier.Name, newTier.Name))
		}

		now := time.Now()
		info.PreviousType = currentTier.Name
		info.MembershipType = newTier.Name
		info.UpgradeDate = &now
		info.Benefits = newTier.Benefits

		if err := tx.Model(&enrollment).Update("membership_info", datatypes.NewJSONType(info)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("membership_tier", newTier.Name).Error; err != nil {
			return err
		}

		enrollment.MembershipInfo = datatypes.NewJSONType(info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// RenewMembership extends the membership window additively from the current
// end date, so renewing early never forfeits remaining time. The renewal
// payment is appended to the same ledger.
func RenewMembership(db *gorm.DB, userID uint, months int, payment PaymentInput) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := activeMembership(tx, userID, &enrollment); err != nil {
			return err
		}

		info := enrollment.MembershipInfo.Data()
		if months <= 0 {
			months = info.DurationMonths
		}
		info.EndDate = info.EndDate.AddDate(0, months, 0)

		updates := map[string]interface{}{
			"membership_info":    datatypes.NewJSONType(info),
			"access_expiry_date": info.EndDate,
			"reminder_sent":      false,
		}
		if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
			return err
		}

		enrollment.MembershipInfo = datatypes.NewJSONType(info)
		enrollment.AccessExpiryDate = info.EndDate

		// A rejected renewal payment rolls the extension back with it.
		if payment.Amount > 0 {
			if _, err := RecordPayment(tx, enrollment.ID, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &enrollment, nil
}

// ExpireOverdueMemberships marks active memberships past their end date as
// EXPIRED and clears the denormalized tier on the student.
func ExpireOverdueMemberships(db *gorm.DB, now time.Time) (int64, error) {
	var expired []models.Enrollment
	err := db.Where("enrollment_type = ? AND status = ? AND access_expiry_date < ? AND is_deleted = false",
		models.EnrollmentMembership, models.StatusActive, now).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	for _, e := range expired {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Enrollment{}).Where("id = ? AND status = ?", e.ID, models.StatusActive).
				Update("status", models.StatusExpired).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", e.UserID).
				Update("membership_tier", "").Error
		})
		if err != nil {
			return 0, err
		}
	}
	return int64(len(expired)), nil
}

func activeMembership(tx *gorm.DB, userID uint, out *models.Enrollment) error {
	err := tx.Where("user_id = ? AND enrollment_type = ? AND status = ? AND is_deleted = false",
		userID, models.EnrollmentMembership, models.StatusActive).
		First(out).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return newError(KindNotFound, fmt.Sprintf("no active membership for student %d", userID))
		}
		return err
	}
	return nil
}
