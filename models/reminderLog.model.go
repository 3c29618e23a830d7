package models

import "gorm.io/gorm"

// Reminder kinds
const (
	ReminderEnrollmentExpiry = "ENROLLMENT_EXPIRY"
	ReminderMembershipExpiry = "MEMBERSHIP_EXPIRY"
	ReminderInstallmentDue   = "INSTALLMENT_DUE"
)

// ReminderLog suppresses duplicate reminder sends across restarts and
// multiple instances. Bucket is a coarse timestamp (e.g. "2026-08-23") so a
// reminder fires at most once per entity per interval.
type ReminderLog struct {
	gorm.Model
	EntityType string `gorm:"type:varchar(30);not null;uniqueIndex:idx_reminder_dedup" json:"entityType"`
	EntityID   uint   `gorm:"not null;uniqueIndex:idx_reminder_dedup" json:"entityId"`
	Kind       string `gorm:"type:varchar(30);not null;uniqueIndex:idx_reminder_dedup" json:"kind"`
	Bucket     string `gorm:"type:varchar(20);not null;uniqueIndex:idx_reminder_dedup" json:"bucket"`
}

func (ReminderLog) TableName() string {
	return "reminder_logs"
}
