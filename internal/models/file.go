// internal/models/file.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type File struct {
	BaseModel
	OwnerID      uuid.UUID        `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title        string           `json:"title" gorm:"size:255;not null"`
	Description  string           `json:"description" gorm:"type:text"`
	StorageKey   string           `json:"-" gorm:"size:512"`
	PreviewKey   string           `json:"-" gorm:"size:512"`
	Price        int64            `json:"price" gorm:"not null;default:0;check:chk_files_price,price >= 0"`
	FinalPrice   int64            `json:"final_price" gorm:"not null;default:0;check:chk_files_final_price,final_price >= 0 AND final_price <= price"`
	ReviewStatus FileReviewStatus `json:"review_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IsActive     bool             `json:"is_active" gorm:"not null;index"`
	IsPublic     bool             `json:"is_public" gorm:"not null"`

	// Derived aggregates. TotalSales, TotalRevenue and the rating fields are
	// recomputed from purchases and ratings; the view/download counters are
	// best-effort.
	TotalSales     int64           `json:"total_sales" gorm:"not null;default:0"`
	TotalDownloads int64           `json:"total_downloads" gorm:"not null;default:0"`
	TotalViews     int64           `json:"total_views" gorm:"not null;default:0"`
	TotalRevenue   int64           `json:"total_revenue" gorm:"not null;default:0"`
	AverageRating  decimal.Decimal `json:"average_rating" gorm:"type:decimal(3,2);not null;default:0"`
	TotalRatings   int64           `json:"total_ratings" gorm:"not null;default:0"`
	TotalReviews   int64           `json:"total_reviews" gorm:"not null;default:0"`

	// Relationships
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// Listed reports whether the file is visible to the public catalog.
func (f *File) Listed() bool {
	return f.IsActive && f.ReviewStatus == FileReviewApproved
}
