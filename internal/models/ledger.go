// internal/models/ledger.go
package models

import (
	"github.com/google/uuid"
)

// LedgerEntry records one signed balance movement on one account.
type LedgerEntry struct {
	EntryModel
	Reference     string          `json:"reference" gorm:"size:80;not null;uniqueIndex"`
	AccountID     uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;index"`
	EntryType     LedgerEntryType `json:"entry_type" gorm:"type:varchar(20);not null;index"`
	Amount        int64           `json:"amount" gorm:"not null"`
	BalanceBefore int64           `json:"balance_before" gorm:"not null"`
	BalanceAfter  int64           `json:"balance_after" gorm:"not null"`
	Description   string          `json:"description" gorm:"type:text"`
	FileID        *uuid.UUID      `json:"file_id,omitempty" gorm:"type:uuid;index"`
	PurchaseID    *uuid.UUID      `json:"purchase_id,omitempty" gorm:"type:uuid;index"`
}
