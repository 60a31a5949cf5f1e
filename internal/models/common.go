// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RecordModel is used by rows that are updated in place but never soft deleted,
// so their unique indexes stay meaningful.
type RecordModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *RecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// EntryModel is used by append-only rows.
type EntryModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (m *EntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}
}

// Enums
type UserType string

const (
	UserTypeMember UserType = "member"
	UserTypeAdmin  UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

// FileReviewStatus is the moderation state of an uploaded file.
type FileReviewStatus string

const (
	FileReviewPending  FileReviewStatus = "pending"
	FileReviewApproved FileReviewStatus = "approved"
	FileReviewRejected FileReviewStatus = "rejected"
)

func (s FileReviewStatus) Valid() bool {
	switch s {
	case FileReviewPending, FileReviewApproved, FileReviewRejected:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type LedgerEntryType string

const (
	LedgerEntryPurchase   LedgerEntryType = "purchase"
	LedgerEntrySale       LedgerEntryType = "sale"
	LedgerEntryRefund     LedgerEntryType = "refund"
	LedgerEntryChargeback LedgerEntryType = "chargeback"
	LedgerEntryAdjustment LedgerEntryType = "adjustment"
)

type ReviewVisibility string

const (
	ReviewVisible ReviewVisibility = "visible"
	ReviewHidden  ReviewVisibility = "hidden"
)

func (v ReviewVisibility) Valid() bool {
	return v == ReviewVisible || v == ReviewHidden
}

type ActivityAction string

const (
	ActivityPurchased ActivityAction = "purchased"
	ActivitySold      ActivityAction = "sold"
	ActivityRated     ActivityAction = "rated"
	ActivityReviewed  ActivityAction = "reviewed"
	ActivityRefunded  ActivityAction = "refunded"
	ActivityAdjusted  ActivityAction = "balance_adjusted"
	ActivityModerated ActivityAction = "moderated"
	ActivityRepriced  ActivityAction = "repriced"
)
