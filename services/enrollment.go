package services

import (
	"edumitra/models"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccessGraceDays is added on top of a batch's end date when computing the
// enrollment's access expiry.
const AccessGraceDays = 30

// EnrollmentInput carries everything needed to admit a student.
type EnrollmentInput struct {
	UserID         uint
	CourseID       uint
	BatchID        *uint
	EnrollmentType models.EnrollmentType

	Currency       string
	DiscountCode   string
	DiscountAmount float64

	BatchSize     int
	IsBatchLeader bool
	BatchMembers  []uint

	PaymentPlan       models.PaymentPlan
	InstallmentsCount int
}

// CreateEnrollment admits a student into a course offering. All validation
// runs before any mutation; the capacity increment and the enrollment row
// share one transaction, so a failure between them rolls the seat back
// instead of leaving the batch overstated.
func CreateEnrollment(db *gorm.DB, input EnrollmentInput) (*models.Enrollment, error) {
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

	var course models.Course
	if err := db.Where("id = ? AND is_deleted = false", input.CourseID).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("course %d not found", input.CourseID))
		}
		return nil, err
	}

	if input.EnrollmentType == models.EnrollmentMembership {
		return nil, newError(KindInvalidEnrollmentStructure, "memberships are created through the membership service")
	}
	if input.EnrollmentType == models.EnrollmentBatch && input.BatchID == nil {
		return nil, newError(KindInvalidEnrollmentStructure, "batch enrollment requires a batch reference")
	}

	if input.PaymentPlan == "" {
		input.PaymentPlan = models.PlanFull
	}

	var enrollment *models.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		// Reject duplicates among non-cancelled enrollments for the same
		// (student, course, batch) triple.
		dup := tx.Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ? AND status <> ? AND is_deleted = false",
				input.UserID, input.CourseID, models.StatusCancelled)
		if input.BatchID != nil {
			dup = dup.Where("batch_id = ?", *input.BatchID)
		} else {
			dup = dup.Where("batch_id IS NULL")
		}
		var count int64
		if err := dup.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newError(KindDuplicateEnrollment, "student already holds a live enrollment for this course offering")
		}

		var batch *models.Batch
		batchInfo := models.BatchInfo{}

		if input.BatchID != nil {
			var b models.Batch
			if err := tx.Where("id = ? AND is_deleted = false", *input.BatchID).First(&b).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return newError(KindNotFound, fmt.Sprintf("batch %d not found", *input.BatchID))
				}
				return err
			}
			if b.CourseID != input.CourseID {
				return newError(KindInvalidEnrollmentStructure, "batch does not belong to the requested course")
			}

			switch input.EnrollmentType {
			case models.EnrollmentBatch:
				if b.Mode == models.BatchModeOneToOne && input.BatchSize != 1 {
					return newError(KindInvalidEnrollmentStructure, "one-to-one batch requires batch size of exactly 1")
				}
				if b.Mode == models.BatchModeGroup && input.BatchSize < 2 {
					return newError(KindInvalidEnrollmentStructure, "group batch requires batch size of at least 2")
				}
				batchInfo = models.BatchInfo{
					BatchSize:     input.BatchSize,
					IsBatchLeader: input.IsBatchLeader,
					BatchMembers:  input.BatchMembers,
				}
			case models.EnrollmentIndividual:
				// An individual enrollment may reference a one-to-one session
				// offering; size is forced to 1 and no leader/members recorded.
				if b.Mode != models.BatchModeOneToOne {
					return newError(KindInvalidEnrollmentStructure, "individual enrollment cannot reference a group batch")
				}
				batchInfo = models.BatchInfo{BatchSize: 1}
			default:
				return newError(KindInvalidEnrollmentStructure,
					fmt.Sprintf("enrollment type %s cannot reference a batch", input.EnrollmentType))
			}

			// Validation is done; take the seat. The conditional increment is
			// the admission decision under concurrency.
			admitted, err := AdmitStudent(tx, *input.BatchID, input.UserID)
			if err != nil {
				return err
			}
			batch = admitted
		}

		var accessExpiry time.Time
		if batch != nil {
			accessExpiry = batch.EndDate.AddDate(0, 0, AccessGraceDays)
		} else {
			accessExpiry = time.Now().AddDate(0, 0, course.AccessDurationDays)
		}

		snapshot, err := ResolvePricing(tx, course.ID, PricingInput{
			EnrollmentType: input.EnrollmentType,
			Currency:       input.Currency,
			DiscountCode:   input.DiscountCode,
			DiscountAmount: input.DiscountAmount,
			BatchSize:      input.BatchSize,
		})
		if err != nil {
			return err
		}

		courseID := input.CourseID
		e := models.Enrollment{
			UserID:            input.UserID,
			CourseID:          &courseID,
			BatchID:           input.BatchID,
			EnrollmentType:    input.EnrollmentType,
			Status:            models.StatusActive,
			AccessExpiryDate:  accessExpiry,
			PricingSnapshot:   datatypes.NewJSONType(snapshot),
			BatchInfo:         datatypes.NewJSONType(batchInfo),
			PaymentPlan:       input.PaymentPlan,
			InstallmentsCount: input.InstallmentsCount,
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}
		enrollment = &e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// TransitionEnrollment applies a lifecycle transition, rejecting anything
// outside the transition table. Cancelling a batch enrollment releases its
// seat in the same transaction; a membership leaving ACTIVE clears the
// denormalized tier on the student (and a resume restores it).
func TransitionEnrollment(db *gorm.DB, enrollmentID uint, next models.EnrollmentStatus) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
			}
			return err
		}

		if !enrollment.CanTransitionTo(next) {
			return newError(KindInvalidTransition,
				fmt.Sprintf("cannot transition enrollment from %s to %s", enrollment.Status, next))
		}

		updates := map[string]interface{}{"status": next}
		now := time.Now()
		if next == models.StatusCompleted {
			updates["completed_at"] = &now
		}
		if err := tx.Model(&enrollment).Updates(updates).Error; err != nil {
			return err
		}

		if next == models.StatusCancelled && enrollment.BatchID != nil {
			if err := ReleaseSeat(tx, *enrollment.BatchID, enrollment.UserID); err != nil {
				return err
			}
		}

		if enrollment.EnrollmentType == models.EnrollmentMembership {
			tier := ""
			if next == models.StatusActive {
				tier = enrollment.MembershipInfo.Data().MembershipType
			}
			if err := tx.Model(&models.User{}).Where("id = ?", enrollment.UserID).
				Update("membership_tier", tier).Error; err != nil {
				return err
			}
		}

		enrollment.Status = next
		if next == models.StatusCompleted {
			enrollment.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExpireOverdueEnrollments marks every active enrollment whose access window
// has passed without completion as EXPIRED. One bulk conditional update;
// used by the daily sweep. Memberships are excluded here: their expiry also
// has to clear the denormalized tier, which ExpireOverdueMemberships owns.
func ExpireOverdueEnrollments(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Enrollment{}).
		Where("status = ? AND access_expiry_date < ? AND enrollment_type <> ? AND is_deleted = false",
			models.StatusActive, now, models.EnrollmentMembership).
		Update("status", models.StatusExpired)
	return result.RowsAffected, result.Error
}
