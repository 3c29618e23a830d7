package services

import (
	"edumitra/models"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// PricingInput describes what is being priced at the moment of enrollment.
type PricingInput struct {
	EnrollmentType models.EnrollmentType
	Currency       string
	DiscountCode   string
	DiscountAmount float64
	BatchSize      int
}

// ResolvePricing computes the immutable pricing snapshot for a course at
// enrollment time. The snapshot is written once onto the enrollment and
// never recomputed: later changes to course_pricings rows do not affect
// existing enrollments.
func ResolvePricing(db *gorm.DB, courseID uint, input PricingInput) (models.PricingSnapshot, error) {
	var snapshot models.PricingSnapshot

	var pricing models.CoursePricing
	err := db.Where("course_id = ? AND currency = ? AND is_deleted = false", courseID, input.Currency).
		First(&pricing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return snapshot, newError(KindConfigurationError,
				fmt.Sprintf("no pricing configured for currency %s on course %d", input.Currency, courseID))
		}
		return snapshot, err
	}

	snapshot.Currency = input.Currency
	snapshot.DiscountCode = input.DiscountCode

	switch input.EnrollmentType {
	case models.EnrollmentBatch:
		snapshot.OriginalPrice = pricing.BatchPrice
		snapshot.FinalPrice = pricing.BatchPrice
		snapshot.PricingType = models.PricingBatch

		// Group discount kicks in once the batch size reaches the configured
		// minimum, reclassifying the pricing type.
		if pricing.GroupMinSize > 0 && input.BatchSize >= pricing.GroupMinSize && pricing.GroupDiscountPct > 0 {
			discount := pricing.BatchPrice * pricing.GroupDiscountPct / 100
			snapshot.FinalPrice = pricing.BatchPrice - discount
			snapshot.DiscountApplied += discount
			snapshot.PricingType = models.PricingGroupDiscount
		}

	default:
		snapshot.OriginalPrice = pricing.IndividualPrice
		snapshot.FinalPrice = pricing.IndividualPrice
		snapshot.PricingType = models.PricingIndividual

		if pricing.EarlyBirdDiscount > 0 && pricing.EarlyBirdUntil != nil && time.Now().Before(*pricing.EarlyBirdUntil) {
			snapshot.FinalPrice = pricing.IndividualPrice - pricing.EarlyBirdDiscount
			snapshot.DiscountApplied += pricing.EarlyBirdDiscount
			snapshot.PricingType = models.PricingEarlyBird
		}
	}

	// Explicit discount code/amount applies last, floored at zero.
	if input.DiscountAmount > 0 {
		snapshot.FinalPrice -= input.DiscountAmount
		snapshot.DiscountApplied += input.DiscountAmount
	}
	snapshot.FinalPrice = math.Max(snapshot.FinalPrice, 0)

	return snapshot, nil
}
