// internal/models/purchase.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is the entitlement record. One row per (file, buyer), whatever its status.
type Purchase struct {
	RecordModel
	FileID               uuid.UUID     `json:"file_id" gorm:"type:uuid;not null;uniqueIndex:idx_purchases_file_buyer,priority:1"`
	BuyerID              uuid.UUID     `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_purchases_file_buyer,priority:2;index"`
	SellerID             uuid.UUID     `json:"seller_id" gorm:"type:uuid;not null;index"`
	PurchasePrice        int64         `json:"purchase_price" gorm:"not null"`
	CommissionAmount     int64         `json:"commission_amount" gorm:"not null"`
	SellerAmount         int64         `json:"seller_amount" gorm:"not null"`
	TransactionReference string        `json:"transaction_reference" gorm:"size:64;not null;uniqueIndex"`
	PaymentStatus        PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;index"`
	RefundedAt           *time.Time    `json:"refunded_at"`
	RefundReason         string        `json:"refund_reason,omitempty" gorm:"type:text"`

	// Relationships
	File *File `json:"file,omitempty" gorm:"foreignKey:FileID"`
}

func (p *Purchase) Completed() bool {
	return p.PaymentStatus == PaymentStatusCompleted
}
