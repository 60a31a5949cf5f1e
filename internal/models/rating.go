// internal/models/rating.go
package models

import (
	"github.com/google/uuid"
)

type Rating struct {
	RecordModel
	FileID      uuid.UUID `json:"file_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_file_user,priority:1"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_file_user,priority:2;index"`
	RatingValue int       `json:"rating_value" gorm:"not null;check:chk_ratings_value,rating_value BETWEEN 1 AND 5"`
}

type Review struct {
	RecordModel
	FileID             uuid.UUID        `json:"file_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_file_user,priority:1"`
	UserID             uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_file_user,priority:2;index"`
	Body               string           `json:"body" gorm:"type:text;not null"`
	IsVerifiedPurchase bool             `json:"is_verified_purchase" gorm:"not null"`
	ReviewStatus       ReviewVisibility `json:"review_status" gorm:"type:varchar(20);not null;default:'visible';index"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
