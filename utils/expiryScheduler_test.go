package utils

import (
	"testing"
	"time"

	"edumitra/database"
	"edumitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInstallmentRemindersDeduped(t *testing.T) {
	db := newTestDB(t)
	database.Database = database.DbInstance{Db: db}

	user := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	next := time.Now().AddDate(0, 0, 1)
	due := models.Enrollment{
		UserID:            user.ID,
		EnrollmentType:    models.EnrollmentIndividual,
		Status:            models.StatusActive,
		AccessExpiryDate:  time.Now().AddDate(0, 6, 0),
		PaymentPlan:       models.PlanInstallment,
		InstallmentsCount: 3,
		NextPaymentDate:   &next,
	}
	require.NoError(t, db.Create(&due).Error)

	// Fully paid plan has no due date and must not be nudged.
	paid := models.Enrollment{
		UserID:           user.ID,
		EnrollmentType:   models.EnrollmentIndividual,
		Status:           models.StatusActive,
		AccessExpiryDate: time.Now().AddDate(0, 6, 0),
		PaymentPlan:      models.PlanFull,
	}
	require.NoError(t, db.Create(&paid).Error)

	ProcessInstallmentReminders()
	ProcessInstallmentReminders()

	var logs []models.ReminderLog
	require.NoError(t, db.Where("kind = ?", models.ReminderInstallmentDue).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, due.ID, logs[0].EntityID)
	assert.Equal(t, next.Format("2006-01-02"), logs[0].Bucket)
}
