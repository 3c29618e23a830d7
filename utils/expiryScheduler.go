package utils

import (
	"edumitra/database"
	"edumitra/models"
	"edumitra/services"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm/clause"
)

// InitializeExpiryScheduler sets up the daily access-expiry sweep.
func InitializeExpiryScheduler() {
	log.Println("[SCHEDULER] Initializing expiry scheduler...")

	c := cron.New()

	// Run daily at 9 AM to warn about and process expiring access
	c.AddFunc("0 9 * * *", func() {
		log.Println("[SCHEDULER] Running daily expiry sweep...")
		ProcessExpiringAccess()
		ProcessInstallmentReminders()
		ExpireOverdueAccess()
		ReconcilePendingPayments()
	})

	c.Start()
	log.Println("[SCHEDULER] Expiry scheduler started - runs daily at 9 AM")
}

// ProcessExpiringAccess sends reminder emails for enrollments and
// memberships nearing their expiry. The reminder log keyed by
// (entity, kind, bucket) suppresses duplicates across restarts and multiple
// instances.
func ProcessExpiringAccess() {
	db := database.Database.Db
	now := time.Now()

	// Course access expiring within a week
	var expiring []models.Enrollment
	err := db.Where("status = ? AND is_deleted = false", models.StatusActive).
		Where("access_expiry_date BETWEEN ? AND ?", now, now.AddDate(0, 0, 7)).
		Where("enrollment_type <> ?", models.EnrollmentMembership).
		Find(&expiring).Error
	if err != nil {
		log.Printf("[SCHEDULER] Error fetching expiring enrollments: %v", err)
		return
	}

	// Memberships within the expiring-soon window
	var expiringMemberships []models.Enrollment
	err = db.Where("enrollment_type = ? AND status = ? AND is_deleted = false",
		models.EnrollmentMembership, models.StatusActive).
		Where("access_expiry_date BETWEEN ? AND ?", now, now.AddDate(0, 0, services.ExpiringSoonDays)).
		Find(&expiringMemberships).Error
	if err != nil {
		log.Printf("[SCHEDULER] Error fetching expiring memberships: %v", err)
		return
	}

	log.Printf("[SCHEDULER] Found %d enrollments and %d memberships expiring soon",
		len(expiring), len(expiringMemberships))

	for _, e := range expiring {
		sendExpiryReminder(e, models.ReminderEnrollmentExpiry, "course access", e.AccessExpiryDate)
	}
	for _, e := range expiringMemberships {
		sendExpiryReminder(e, models.ReminderMembershipExpiry, "membership", e.AccessExpiryDate)
	}
}

// ProcessInstallmentReminders nudges students whose next installment falls
// due within the next three days.
func ProcessInstallmentReminders() {
	db := database.Database.Db
	now := time.Now()

	var due []models.Enrollment
	err := db.Where("payment_plan = ? AND status = ? AND is_deleted = false",
		models.PlanInstallment, models.StatusActive).
		Where("next_payment_date IS NOT NULL AND next_payment_date BETWEEN ? AND ?", now, now.AddDate(0, 0, 3)).
		Find(&due).Error
	if err != nil {
		log.Printf("[SCHEDULER] Error fetching due installments: %v", err)
		return
	}

	for _, e := range due {
		sendExpiryReminder(e, models.ReminderInstallmentDue, "installment payment", *e.NextPaymentDate)
	}
}

func sendExpiryReminder(enrollment models.Enrollment, kind, what string, dueDate time.Time) {
	db := database.Database.Db

	// One reminder per entity per due date; the unique index makes the
	// insert the dedup decision.
	entry := models.ReminderLog{
		EntityType: "ENROLLMENT",
		EntityID:   enrollment.ID,
		Kind:       kind,
		Bucket:     dueDate.Format("2006-01-02"),
	}
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		log.Printf("[SCHEDULER] Error recording reminder for enrollment %d: %v", enrollment.ID, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		return // already sent for this bucket
	}

	var user models.User
	if err := db.Where("id = ?", enrollment.UserID).First(&user).Error; err != nil {
		log.Printf("[SCHEDULER] Error fetching user %d: %v", enrollment.UserID, err)
		return
	}

	SendExpiryReminderEmail(user.Email, user.Name, what, dueDate)
	log.Printf("[SCHEDULER] Sent %s reminder for enrollment %d to %s", kind, enrollment.ID, user.Email)
}

// ExpireOverdueAccess flips overdue enrollments and memberships to EXPIRED.
func ExpireOverdueAccess() {
	db := database.Database.Db
	now := time.Now()

	expiredMemberships, err := services.ExpireOverdueMemberships(db, now)
	if err != nil {
		log.Printf("[SCHEDULER] Error expiring memberships: %v", err)
	} else if expiredMemberships > 0 {
		log.Printf("[SCHEDULER] Expired %d memberships", expiredMemberships)
	}

	expired, err := services.ExpireOverdueEnrollments(db, now)
	if err != nil {
		log.Printf("[SCHEDULER] Error expiring enrollments: %v", err)
	} else if expired > 0 {
		log.Printf("[SCHEDULER] Expired %d enrollments", expired)
	}
}

// ReconcilePendingPayments polls the gateway for payments stuck in PENDING
// and applies the authoritative status.
func ReconcilePendingPayments() {
	db := database.Database.Db
	cutoff := time.Now().Add(-1 * time.Hour)

	var pending []models.Payment
	err := db.Where("status = ? AND gateway_order_id <> '' AND payment_date < ? AND is_deleted = false",
		models.PaymentPending, cutoff).
		Limit(100).
		Find(&pending).Error
	if err != nil {
		log.Printf("[SCHEDULER] Error fetching pending payments: %v", err)
		return
	}

	for _, p := range pending {
		status, err := CheckOrderStatus(p.GatewayOrderID)
		if err != nil {
			log.Printf("[SCHEDULER] Status check failed for order %s: %v", p.GatewayOrderID, err)
			continue
		}

		var mapped models.PaymentStatus
		switch status {
		case "settlement", "capture":
			mapped = models.PaymentCompleted
		case "expire", "cancel", "deny":
			mapped = models.PaymentFailed
		default:
			continue // still pending at the gateway
		}

		if err := services.SyncPaymentStatus(db, p.ID, mapped); err != nil {
			log.Printf("[SCHEDULER] Error syncing payment %d: %v", p.ID, err)
			continue
		}
		log.Printf("[SCHEDULER] Reconciled payment %d (order %s) to %s", p.ID, p.GatewayOrderID, mapped)
	}
}
