package services

import (
	"testing"

	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPaymentValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	_, err := RecordPayment(db, enrollment.ID, PaymentInput{Amount: 0, Currency: "INR", Method: "UPI"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidPayment))

	_, err = RecordPayment(db, enrollment.ID, PaymentInput{Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidPayment))

	_, err = RecordPayment(db, 9999, PaymentInput{Amount: 100, Currency: "INR", Method: "UPI"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestRecordPaymentUpdatesLedger(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	payment, err := RecordPayment(db, enrollment.ID, PaymentInput{
		Amount:        10000,
		Currency:      "INR",
		Method:        "UPI",
		TransactionID: "txn-001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, models.PaymentEventCharge, payment.EventType)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 10000.0, reloaded.TotalAmountPaid)
}

func TestRecordPaymentIdempotentReplay(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	first, err := RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "card", TransactionID: "txn-replay",
	})
	require.NoError(t, err)

	// A webhook retry delivers the same transaction id again.
	replay, err := RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "card", TransactionID: "txn-replay",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)

	var count int64
	db.Model(&models.Payment{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 5000.0, reloaded.TotalAmountPaid)
}

func TestRecordPaymentReplayAgainstOtherEnrollmentRejected(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	first := enrollIndividual(t, db, user.ID, course.ID)

	other := seedStudent(t, db)
	second := enrollIndividual(t, db, other.ID, course.ID)

	_, err := RecordPayment(db, first.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "card", TransactionID: "txn-crossed",
	})
	require.NoError(t, err)

	// The same gateway transaction cannot settle a different enrollment.
	_, err = RecordPayment(db, second.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "card", TransactionID: "txn-crossed",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidPayment))

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.Zero(t, reloaded.TotalAmountPaid)
}

func TestRecordPaymentPendingDoesNotCount(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	payment, err := RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 3000, Currency: "INR", Method: "netbanking",
		TransactionID: "txn-pending", Status: models.PaymentPending,
	})
	require.NoError(t, err)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Zero(t, reloaded.TotalAmountPaid)

	// The gateway later settles; the sweep syncs the status.
	require.NoError(t, SyncPaymentStatus(db, payment.ID, models.PaymentCompleted))
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 3000.0, reloaded.TotalAmountPaid)
}

func TestInstallmentSchedule(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)

	enrollment, err := CreateEnrollment(db, EnrollmentInput{
		UserID:            user.ID,
		CourseID:          course.ID,
		EnrollmentType:    models.EnrollmentIndividual,
		Currency:          "INR",
		PaymentPlan:       models.PlanInstallment,
		InstallmentsCount: 2,
	})
	require.NoError(t, err)

	_, err = RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "UPI", TransactionID: "inst-1",
	})
	require.NoError(t, err)

	var mid models.Enrollment
	require.NoError(t, db.First(&mid, enrollment.ID).Error)
	require.NotNil(t, mid.NextPaymentDate, "one of two installments paid, next due date expected")

	_, err = RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 5000, Currency: "INR", Method: "UPI", TransactionID: "inst-2",
	})
	require.NoError(t, err)

	var done models.Enrollment
	require.NoError(t, db.First(&done, enrollment.ID).Error)
	assert.Nil(t, done.NextPaymentDate, "all installments paid, schedule should clear")
	assert.Equal(t, 10000.0, done.TotalAmountPaid)
}

func TestRefundPayment(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	original, err := RecordPayment(db, enrollment.ID, PaymentInput{
		Amount: 10000, Currency: "INR", Method: "card", TransactionID: "txn-refundable",
	})
	require.NoError(t, err)

	refund, err := RefundPayment(db, enrollment.ID, "txn-refundable", "student withdrew")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentEventRefund, refund.EventType)
	assert.Equal(t, models.PaymentRefunded, refund.Status)
	assert.Equal(t, "txn-refundable/refund", refund.TransactionID)
	require.NotNil(t, refund.RefundOfID)
	assert.Equal(t, original.ID, *refund.RefundOfID)

	// Original stays in the ledger, flipped to REFUNDED.
	var kept models.Payment
	require.NoError(t, db.First(&kept, original.ID).Error)
	assert.Equal(t, models.PaymentRefunded, kept.Status)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Zero(t, reloaded.TotalAmountPaid)

	// A refunded charge cannot be refunded twice.
	_, err = RefundPayment(db, enrollment.ID, "txn-refundable", "again")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidPayment))
}

func TestPaymentHistoryOrder(t *testing.T) {
	db := newTestDB(t)
	user := seedStudent(t, db)
	course := seedCourse(t, db)
	seedPricing(t, db, course.ID)
	enrollment := enrollIndividual(t, db, user.ID, course.ID)

	for _, txn := range []string{"h-1", "h-2"} {
		_, err := RecordPayment(db, enrollment.ID, PaymentInput{
			Amount: 1000, Currency: "INR", Method: "UPI", TransactionID: txn,
		})
		require.NoError(t, err)
	}

	history, err := PaymentHistory(db, enrollment.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
