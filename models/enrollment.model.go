package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentType classifies how a student joined.
type EnrollmentType string

const (
	EnrollmentIndividual  EnrollmentType = "INDIVIDUAL"
	EnrollmentBatch       EnrollmentType = "BATCH"
	EnrollmentCorporate   EnrollmentType = "CORPORATE"
	EnrollmentGroup       EnrollmentType = "GROUP"
	EnrollmentScholarship EnrollmentType = "SCHOLARSHIP"
	EnrollmentTrial       EnrollmentType = "TRIAL"
	EnrollmentMembership  EnrollmentType = "MEMBERSHIP"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	StatusActive    EnrollmentStatus = "ACTIVE"
	StatusCompleted EnrollmentStatus = "COMPLETED"
	StatusCancelled EnrollmentStatus = "CANCELLED"
	StatusOnHold    EnrollmentStatus = "ON_HOLD"
	StatusExpired   EnrollmentStatus = "EXPIRED"
)

// PaymentPlan values
type PaymentPlan string

const (
	PlanFull         PaymentPlan = "FULL"
	PlanInstallment  PaymentPlan = "INSTALLMENT"
	PlanSubscription PaymentPlan = "SUBSCRIPTION"
	PlanFree         PaymentPlan = "FREE"
	PlanScholarship  PaymentPlan = "SCHOLARSHIP"
)

// Pricing type values recorded in the snapshot
const (
	PricingIndividual    = "INDIVIDUAL"
	PricingBatch         = "BATCH"
	PricingEarlyBird     = "EARLY_BIRD"
	PricingGroupDiscount = "GROUP_DISCOUNT"
	PricingMembership    = "MEMBERSHIP"
)

// PricingSnapshot is the price terms captured at enrollment time. It is
// written once and never recomputed, even if the course pricing changes.
type PricingSnapshot struct {
	OriginalPrice   float64 `json:"original_price"`
	FinalPrice      float64 `json:"final_price"`
	Currency        string  `json:"currency"`
	PricingType     string  `json:"pricing_type"`
	DiscountApplied float64 `json:"discount_applied"`
	DiscountCode    string  `json:"discount_code"`
}

// BatchInfo is only meaningful when EnrollmentType is BATCH.
type BatchInfo struct {
	BatchSize     int    `json:"batch_size"`
	IsBatchLeader bool   `json:"is_batch_leader"`
	BatchMembers  []uint `json:"batch_members"`
}

// MembershipInfo is only meaningful when EnrollmentType is MEMBERSHIP.
type MembershipInfo struct {
	MembershipType string     `json:"membership_type"`
	DurationMonths int        `json:"duration_months"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	AutoRenewal    bool       `json:"auto_renewal"`
	Benefits       []string   `json:"benefits"`
	PreviousType   string     `json:"previous_type"`
	UpgradeDate    *time.Time `json:"upgrade_date"`
}

// Enrollment is the central aggregate: a student's claim on a course
// offering (or membership), with its commercial and progress state.
type Enrollment struct {
	gorm.Model
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	CourseID *uint `gorm:"index" json:"course_id"` // nil for memberships
	BatchID  *uint `gorm:"index" json:"batch_id"`  // nil for individual/membership

	EnrollmentType EnrollmentType   `gorm:"type:varchar(20);not null" json:"enrollment_type"`
	Status         EnrollmentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`

	AccessExpiryDate time.Time `gorm:"not null" json:"access_expiry_date"`

	PricingSnapshot datatypes.JSONType[PricingSnapshot] `json:"pricing_snapshot"`
	BatchInfo       datatypes.JSONType[BatchInfo]       `json:"batch_info"`
	MembershipInfo  datatypes.JSONType[MembershipInfo]  `json:"membership_info"`

	// Embedded progress summary; detailed entries live in lesson_progresses.
	OverallPercentage float64    `gorm:"default:0" json:"overall_percentage"`
	LessonsCompleted  int        `gorm:"default:0" json:"lessons_completed"`
	LastActivityDate  *time.Time `json:"last_activity_date"`

	TotalAmountPaid   float64     `gorm:"default:0" json:"total_amount_paid"` // derived: sum of COMPLETED payments
	PaymentPlan       PaymentPlan `gorm:"type:varchar(20);default:'FULL'" json:"payment_plan"`
	InstallmentsCount int         `gorm:"default:0" json:"installments_count"`
	NextPaymentDate   *time.Time  `json:"next_payment_date"`

	CertificateIssued bool   `gorm:"default:false" json:"certificate_issued"`
	CertificateID     string `gorm:"default:''" json:"certificate_id"`

	CompletedAt  *time.Time `json:"completed_at"`
	ReminderSent bool       `gorm:"default:false" json:"-"`
	IsDeleted    bool       `gorm:"default:false" json:"-"`

	Payments []Payment `gorm:"foreignKey:EnrollmentID" json:"payments,omitempty"`
}

// Live reports whether the enrollment still counts toward the uniqueness
// rule on (student, course, batch).
func (e *Enrollment) Live() bool {
	return e.Status != StatusCancelled && !e.IsDeleted
}

// statusTransitions is the closed transition table for enrollment status.
// COMPLETED, CANCELLED and EXPIRED are terminal.
var statusTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	StatusActive: {StatusCompleted, StatusCancelled, StatusOnHold, StatusExpired},
	StatusOnHold: {StatusActive, StatusCancelled},
}

// CanTransitionTo reports whether moving from the current status to next is
// a legal lifecycle transition.
func (e *Enrollment) CanTransitionTo(next EnrollmentStatus) bool {
	for _, allowed := range statusTransitions[e.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}
