package model

import "gorm.io/gorm"

// PaymentStatus follows the ledger's terminal-transition rules: pending can
// become completed or failed, completed can become refunded, nothing else.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	gorm.Model
	ListingID       uint          `json:"listing_id" gorm:"index;not null"`
	PayerID         uint          `json:"payer_id" gorm:"index;not null"`
	Amount          int64         `json:"amount" gorm:"not null"`
	Status          PaymentStatus `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	TransactionCode string        `json:"transaction_code" gorm:"uniqueIndex;not null"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
	Payer   User    `json:"-" gorm:"foreignKey:PayerID"`
}
