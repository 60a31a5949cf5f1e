// internal/handlers/views.go
package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/filemart/internal/models"
)

// Response shapes for data shown to callers other than the account holder.

type userSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type fileView struct {
	ID             uuid.UUID               `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Owner          *userSummary            `json:"owner,omitempty"`
	Price          int64                   `json:"price"`
	FinalPrice     int64                   `json:"final_price"`
	ReviewStatus   models.FileReviewStatus `json:"review_status"`
	IsActive       bool                    `json:"is_active"`
	IsPublic       bool                    `json:"is_public"`
	TotalSales     int64                   `json:"total_sales"`
	TotalDownloads int64                   `json:"total_downloads"`
	TotalViews     int64                   `json:"total_views"`
	AverageRating  string                  `json:"average_rating"`
	TotalRatings   int64                   `json:"total_ratings"`
	TotalReviews   int64                   `json:"total_reviews"`
	TotalRevenue   *int64                  `json:"total_revenue,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// newFileView hides revenue from everyone except the owner and administrators.
func newFileView(file *models.File, showRevenue bool) fileView {
	view := fileView{
		ID:             file.ID,
		Title:          file.Title,
		Description:    file.Description,
		Price:          file.Price,
		FinalPrice:     file.FinalPrice,
		ReviewStatus:   file.ReviewStatus,
		IsActive:       file.IsActive,
		IsPublic:       file.IsPublic,
		TotalSales:     file.TotalSales,
		TotalDownloads: file.TotalDownloads,
		TotalViews:     file.TotalViews,
		AverageRating:  file.AverageRating.StringFixed(2),
		TotalRatings:   file.TotalRatings,
		TotalReviews:   file.TotalReviews,
		CreatedAt:      file.CreatedAt,
	}
	if file.Owner != nil {
		view.Owner = &userSummary{ID: file.Owner.ID, Username: file.Owner.Username}
	}
	if showRevenue {
		revenue := file.TotalRevenue
		view.TotalRevenue = &revenue
	}
	return view
}

type reviewView struct {
	ID                 uuid.UUID    `json:"id"`
	Author             *userSummary `json:"author,omitempty"`
	Body               string       `json:"body"`
	IsVerifiedPurchase bool         `json:"is_verified_purchase"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func newReviewViews(reviews []models.Review) []reviewView {
	views := make([]reviewView, 0, len(reviews))
	for _, r := range reviews {
		view := reviewView{
			ID:                 r.ID,
			Body:               r.Body,
			IsVerifiedPurchase: r.IsVerifiedPurchase,
			CreatedAt:          r.CreatedAt,
			UpdatedAt:          r.UpdatedAt,
		}
		if r.User != nil {
			view.Author = &userSummary{ID: r.User.ID, Username: r.User.Username}
		}
		views = append(views, view)
	}
	return views
}
