package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus defines the status of a payment event
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PaymentEventType distinguishes charges from refund adjustments
type PaymentEventType string

const (
	PaymentEventCharge PaymentEventType = "CHARGE"
	PaymentEventRefund PaymentEventType = "REFUND"
)

// Payment is one event in an enrollment's append-only ledger. Events are
// never deleted; a refund flips the original to REFUNDED and appends a
// separate REFUND adjustment event for audit.
type Payment struct {
	gorm.Model
	EnrollmentID uint `gorm:"not null;index" json:"enrollmentId"`
	UserID       uint `gorm:"not null;index" json:"userId"`

	EventType PaymentEventType `gorm:"type:varchar(20);default:'CHARGE'" json:"eventType"`
	Amount    float64          `gorm:"not null" json:"amount"`
	Currency  string           `gorm:"type:varchar(10);not null" json:"currency"`
	Method    string           `gorm:"type:varchar(50);not null" json:"method"` // UPI, card, netbanking, wallet

	TransactionID string        `gorm:"type:varchar(100);index" json:"transactionId"`
	Status        PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`

	Gateway        string `gorm:"type:varchar(50)" json:"gateway"` // midtrans, mock
	GatewayOrderID string `gorm:"type:varchar(100)" json:"gatewayOrderId"`

	RefundOfID *uint  `json:"refundOfId"` // set on REFUND events
	Notes      string `gorm:"type:text" json:"notes"`

	PaymentDate time.Time `gorm:"not null" json:"paymentDate"`
	IsDeleted   bool      `gorm:"default:false" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
