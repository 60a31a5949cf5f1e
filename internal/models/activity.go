// internal/models/activity.go
package models

import (
	"github.com/google/uuid"
)

// ActivityLog is append-only and never read back by the ledger services.
type ActivityLog struct {
	EntryModel
	UserID       uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Action       ActivityAction `json:"action" gorm:"type:varchar(40);not null;index"`
	ResourceType string         `json:"resource_type" gorm:"size:50;not null"`
	ResourceID   *uuid.UUID     `json:"resource_id" gorm:"type:uuid;index"`
	Reference    string         `json:"reference,omitempty" gorm:"size:80"`
	Amount       int64          `json:"amount"`
	Details      JSONB          `json:"details" gorm:"type:jsonb"`
	IPAddress    string         `json:"ip_address" gorm:"size:45"`
	UserAgent    string         `json:"user_agent" gorm:"type:text"`
}
