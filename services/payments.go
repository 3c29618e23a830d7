package services

import (
	"edumitra/models"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PaymentInput is the verified payment fact handed to the ledger. The
// engine is gateway-agnostic: signature verification happens upstream.
type PaymentInput struct {
	Amount         float64
	Currency       string
	Method         string
	TransactionID  string
	Status         models.PaymentStatus
	Gateway        string
	GatewayOrderID string
	Notes          string
}

// RecordPayment appends a payment event to an enrollment's ledger and
// recomputes the derived totals. Replaying a transaction id that is already
// recorded returns the existing event unchanged, so gateway webhook retries
// never double-count.
func RecordPayment(db *gorm.DB, enrollmentID uint, input PaymentInput) (*models.Payment, error) {
	if input.Amount <= 0 {
		return nil, newError(KindInvalidPayment, "payment amount must be positive")
	}
	if input.Method == "" {
		return nil, newError(KindInvalidPayment, "payment method is required")
	}
	if input.Status == "" {
		input.Status = models.PaymentCompleted
	}

	var payment *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
			}
			return err
		}

		// Idempotent replay: same transaction id means the same gateway event.
		// The same id showing up against a different enrollment is not a
		// retry, it is a mismatch, and is rejected.
		if input.TransactionID != "" {
			var existing models.Payment
			err := tx.Where("transaction_id = ? AND is_deleted = false", input.TransactionID).First(&existing).Error
			if err == nil {
				if existing.EnrollmentID != enrollmentID {
					return newError(KindInvalidPayment,
						fmt.Sprintf("transaction %s is already recorded against another enrollment", input.TransactionID))
				}
				payment = &existing
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}
		}

		p := models.Payment{
			EnrollmentID:   enrollmentID,
			UserID:         enrollment.UserID,
			EventType:      models.PaymentEventCharge,
			Amount:         input.Amount,
			Currency:       input.Currency,
			Method:         input.Method,
			TransactionID:  input.TransactionID,
			Status:         input.Status,
			Gateway:        input.Gateway,
			GatewayOrderID: input.GatewayOrderID,
			Notes:          input.Notes,
			PaymentDate:    time.Now(),
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		if err := recomputeLedger(tx, &enrollment); err != nil {
			return err
		}

		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RefundPayment records a refund for a completed charge. The original event
// is retained for audit with its status flipped to REFUNDED, and a distinct
// REFUND adjustment event is appended.
func RefundPayment(db *gorm.DB, enrollmentID uint, transactionID string, reason string) (*models.Payment, error) {
	var refund *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		if err := tx.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
			}
			return err
		}

		var original models.Payment
		err := tx.Where("enrollment_id = ? AND transaction_id = ? AND event_type = ? AND is_deleted = false",
			enrollmentID, transactionID, models.PaymentEventCharge).First(&original).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return newError(KindNotFound, fmt.Sprintf("payment %s not found on enrollment %d", transactionID, enrollmentID))
			}
			return err
		}
		if original.Status != models.PaymentCompleted {
			return newError(KindInvalidPayment, fmt.Sprintf("payment %s is %s, only completed payments can be refunded", transactionID, original.Status))
		}

		if err := tx.Model(&original).Update("status", models.PaymentRefunded).Error; err != nil {
			return err
		}

		r := models.Payment{
			EnrollmentID:  enrollmentID,
			UserID:        enrollment.UserID,
			EventType:     models.PaymentEventRefund,
			Amount:        original.Amount,
			Currency:      original.Currency,
			Method:        original.Method,
			TransactionID: original.TransactionID + "/refund",
			Status:        models.PaymentRefunded,
			Gateway:       original.Gateway,
			RefundOfID:    &original.ID,
			Notes:         reason,
			PaymentDate:   time.Now(),
		}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		if err := recomputeLedger(tx, &enrollment); err != nil {
			return err
		}

		refund = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// recomputeLedger rederives total_amount_paid and the installment schedule
// from the event history. Pending, failed and refunded events stay in the
// ledger but never count toward the total.
func recomputeLedger(tx *gorm.DB, enrollment *models.Enrollment) error {
	var total float64
	err := tx.Model(&models.Payment{}).
		Where("enrollment_id = ? AND event_type = ? AND status = ? AND is_deleted = false",
			enrollment.ID, models.PaymentEventCharge, models.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"total_amount_paid": total}

	if enrollment.PaymentPlan == models.PlanInstallment {
		var completed int64
		err := tx.Model(&models.Payment{}).
			Where("enrollment_id = ? AND event_type = ? AND status = ? AND is_deleted = false",
				enrollment.ID, models.PaymentEventCharge, models.PaymentCompleted).
			Count(&completed).Error
		if err != nil {
			return err
		}
		if int(completed) < enrollment.InstallmentsCount {
			next := time.Now().AddDate(0, 1, 0) // one billing period ahead
			updates["next_payment_date"] = &next
		} else {
			updates["next_payment_date"] = nil
		}
	}

	if err := tx.Model(enrollment).Updates(updates).Error; err != nil {
		return err
	}
	enrollment.TotalAmountPaid = total
	return nil
}

// SyncPaymentStatus applies a status reported by the gateway to an already
// recorded event and rederives the totals. Used by the webhook and the
// pending-payment reconciliation sweep.
func SyncPaymentStatus(db *gorm.DB, paymentID uint, status models.PaymentStatus) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("id = ? AND is_deleted = false", paymentID).First(&payment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return newError(KindNotFound, fmt.Sprintf("payment %d not found", paymentID))
			}
			return err
		}
		if payment.Status == status {
			return nil
		}

		var enrollment models.Enrollment
		if err := tx.Where("id = ?", payment.EnrollmentID).First(&enrollment).Error; err != nil {
			return err
		}

		if err := tx.Model(&payment).Update("status", status).Error; err != nil {
			return err
		}
		return recomputeLedger(tx, &enrollment)
	})
}

// PaymentHistory returns the full event history for an enrollment, newest
// first. Authorization (owner vs admin/instructor) is the controller's job.
func PaymentHistory(db *gorm.DB, enrollmentID uint) ([]models.Payment, error) {
	var enrollment models.Enrollment
	if err := db.Where("id = ? AND is_deleted = false", enrollmentID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, newError(KindNotFound, fmt.Sprintf("enrollment %d not found", enrollmentID))
		}
		return nil, err
	}

	var payments []models.Payment
	if err := db.Where("enrollment_id = ? AND is_deleted = false", enrollmentID).
		Order("payment_date desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
