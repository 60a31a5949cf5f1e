// internal/services/rating_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

const (
	minRating       = 1
	maxRating       = 5
	minReviewLength = 10
	maxReviewLength = 1000
)

type RatingService struct {
	db              *gorm.DB
	activity        *ActivityRecorder
	requirePurchase bool
}

// RatingSnapshot is the file's rating aggregate after a submission.
type RatingSnapshot struct {
	FileID        uuid.UUID       `json:"file_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalRatings  int64           `json:"total_ratings"`
	TotalReviews  int64           `json:"total_reviews"`
}

func NewRatingService(db *gorm.DB, cfg *config.Config, activity *ActivityRecorder) *RatingService {
	return &RatingService{
		db:              db,
		activity:        activity,
		requirePurchase: cfg.Ledger.RequirePurchaseToRate,
	}
}

// SubmitRating upserts the user's rating, and review when text is given, then
// recomputes the file's rating aggregates in the same transaction. Blank review
// text is treated as no review.
func (s *RatingService) SubmitRating(ctx context.Context, fileID, userID uuid.UUID, value int, review *string) (*RatingSnapshot, error) {
	if value < minRating || value > maxRating {
		return nil, ErrInvalidRating
	}

	var body string
	if review != nil {
		body = strings.TrimSpace(*review)
		if body != "" {
			if n := utf8.RuneCountInString(body); n < minReviewLength || n > maxReviewLength {
				return nil, ErrInvalidReviewLength
			}
		}
	}

	var snapshot *RatingSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The file row lock serializes concurrent aggregate recomputation.
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if !file.IsActive {
			return ErrInvalidFile
		}
		if file.OwnerID == userID {
			return ErrSelfRating
		}

		purchased, err := completedPurchaseExists(tx, fileID, userID)
		if err != nil {
			return err
		}
		if s.requirePurchase && !purchased {
			return ErrPurchaseRequired
		}

		now := time.Now()
		rating := &models.Rating{FileID: fileID, UserID: userID, RatingValue: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "file_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"rating_value": value, "updated_at": now}),
		}).Create(rating).Error; err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}

		if body != "" {
			// is_verified_purchase is only written on insert.
			reviewRow := &models.Review{
				FileID:             fileID,
				UserID:             userID,
				Body:               body,
				IsVerifiedPurchase: purchased,
				ReviewStatus:       models.ReviewVisible,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "file_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"body": body, "updated_at": now}),
			}).Create(reviewRow).Error; err != nil {
				return fmt.Errorf("failed to save review: %w", err)
			}
		}

		snapshot, err = recomputeRatingAggregates(tx, fileID)
		if err != nil {
			return err
		}

		activities := []Activity{{
			UserID:       userID,
			Action:       models.ActivityRated,
			ResourceType: "file",
			ResourceID:   &fileID,
			Details:      map[string]interface{}{"rating": value},
		}}
		if body != "" {
			activities = append(activities, Activity{
				UserID:       userID,
				Action:       models.ActivityReviewed,
				ResourceType: "file",
				ResourceID:   &fileID,
				Details:      map[string]interface{}{"verified_purchase": purchased},
			})
		}
		s.activity.RecordTx(tx, activities...)
		return nil
	})

	fields := logrus.Fields{"file_id": fileID, "user_id": userID, "rating": value}
	if err != nil {
		if Kind(err) == KindInfrastructure {
			logrus.WithError(err).WithFields(fields).Error("Rating submission failed")
		} else {
			logrus.WithFields(fields).WithField("reason", err.Error()).Debug("Rating submission rejected")
		}
		return nil, err
	}

	logrus.WithFields(fields).Debug("Rating submitted")
	return snapshot, nil
}

// recomputeRatingAggregates derives average_rating, total_ratings and
// total_reviews from the rating and review rows and stores them on the file.
func recomputeRatingAggregates(tx *gorm.DB, fileID uuid.UUID) (*RatingSnapshot, error) {
	var stats struct {
		Total      int64
		ValueTotal int64
	}
	if err := tx.Model(&models.Rating{}).
		Select("COUNT(*) AS total, COALESCE(SUM(rating_value), 0) AS value_total").
		Where("file_id = ?", fileID).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	var reviews int64
	if err := tx.Model(&models.Review{}).Where("file_id = ?", fileID).Count(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	average := decimal.Zero
	if stats.Total > 0 {
		average = decimal.NewFromInt(stats.ValueTotal).Div(decimal.NewFromInt(stats.Total)).Round(2)
	}

	if err := tx.Model(&models.File{}).Where("id = ?", fileID).UpdateColumns(map[string]interface{}{
		"average_rating": average,
		"total_ratings":  stats.Total,
		"total_reviews":  reviews,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update rating aggregates: %w", err)
	}

	return &RatingSnapshot{
		FileID:        fileID,
		AverageRating: average,
		TotalRatings:  stats.Total,
		TotalReviews:  reviews,
	}, nil
}

// ListReviews returns the visible reviews of a file, newest first by default.
func (s *RatingService) ListReviews(ctx context.Context, fileID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	var file models.File
	if err := s.db.WithContext(ctx).Select("id").First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("failed to load file: %w", err)
	}

	query := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("file_id = ? AND review_status = ?", fileID, models.ReviewVisible).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "updated_at"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username")
	}).Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}
