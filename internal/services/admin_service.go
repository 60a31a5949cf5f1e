// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

type AdminService struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

type AdminDashboardStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveUsers         int64 `json:"active_users"`
	NewUsersThisMonth   int64 `json:"new_users_this_month"`
	TotalFiles          int64 `json:"total_files"`
	PendingFiles        int64 `json:"pending_files"`
	CompletedPurchases  int64 `json:"completed_purchases"`
	RefundedPurchases   int64 `json:"refunded_purchases"`
	GrossVolume         int64 `json:"gross_volume"`
	MonthlyVolume       int64 `json:"monthly_volume"`
	CommissionCollected int64 `json:"commission_collected"`
	PointsInCirculation int64 `json:"points_in_circulation"`
}

type FileStatusRequest struct {
	ReviewStatus *models.FileReviewStatus `json:"review_status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
	IsActive     *bool                    `json:"is_active,omitempty"`
}

type AdminPurchaseFilter struct {
	utils.PaginationParams
	Status   *models.PaymentStatus `json:"status,omitempty"`
	BuyerID  *uuid.UUID            `json:"buyer_id,omitempty"`
	SellerID *uuid.UUID            `json:"seller_id,omitempty"`
	FileID   *uuid.UUID            `json:"file_id,omitempty"`
}

func NewAdminService(db *gorm.DB, activity *ActivityRecorder) *AdminService {
	return &AdminService{
		db:       db,
		activity: activity,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	queries := []struct {
		name string
		run  func() error
	}{
		{"total_users", func() error { return db.Model(&models.User{}).Count(&stats.TotalUsers).Error }},
		{"active_users", func() error {
			return db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers).Error
		}},
		{"new_users", func() error {
			return db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth).Error
		}},
		{"total_files", func() error { return db.Model(&models.File{}).Count(&stats.TotalFiles).Error }},
		{"pending_files", func() error {
			return db.Model(&models.File{}).Where("review_status = ?", models.FileReviewPending).Count(&stats.PendingFiles).Error
		}},
		{"completed_purchases", func() error {
			return db.Model(&models.Purchase{}).Where("payment_status = ?", models.PaymentStatusCompleted).Count(&stats.CompletedPurchases).Error
		}},
		{"refunded_purchases", func() error {
			return db.Model(&models.Purchase{}).Where("payment_status = ?", models.PaymentStatusRefunded).Count(&stats.RefundedPurchases).Error
		}},
		{"gross_volume", func() error {
			return db.Model(&models.Purchase{}).Where("payment_status = ?", models.PaymentStatusCompleted).
				Select("COALESCE(SUM(purchase_price), 0)").Scan(&stats.GrossVolume).Error
		}},
		{"monthly_volume", func() error {
			return db.Model(&models.Purchase{}).
				Where("payment_status = ? AND created_at >= ?", models.PaymentStatusCompleted, monthStart).
				Select("COALESCE(SUM(purchase_price), 0)").Scan(&stats.MonthlyVolume).Error
		}},
		{"commission", func() error {
			return db.Model(&models.Purchase{}).Where("payment_status = ?", models.PaymentStatusCompleted).
				Select("COALESCE(SUM(commission_amount), 0)").Scan(&stats.CommissionCollected).Error
		}},
		{"circulation", func() error {
			return db.Model(&models.User{}).Select("COALESCE(SUM(balance), 0)").Scan(&stats.PointsInCirculation).Error
		}},
	}

	for _, q := range queries {
		if err := q.run(); err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", q.name, err)
		}
	}

	return stats, nil
}

// UpdateFileStatus sets a file's moderation state and active flag.
func (s *AdminService) UpdateFileStatus(ctx context.Context, fileID, adminID uuid.UUID, req *FileStatusRequest) (*models.File, error) {
	if req.ReviewStatus != nil && !req.ReviewStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.ReviewStatus)
	}

	db := s.db.WithContext(ctx)
	var file models.File
	if err := db.First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldValues := map[string]interface{}{"review_status": file.ReviewStatus, "is_active": file.IsActive}
	updates := map[string]interface{}{}
	if req.ReviewStatus != nil {
		updates["review_status"] = *req.ReviewStatus
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return &file, nil
	}

	if err := db.Model(&file).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update file status: %w", err)
	}
	if req.ReviewStatus != nil {
		file.ReviewStatus = *req.ReviewStatus
	}
	if req.IsActive != nil {
		file.IsActive = *req.IsActive
	}

	s.activity.Record(ctx, Activity{
		UserID:       adminID,
		Action:       models.ActivityModerated,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      map[string]interface{}{"old": oldValues, "new": updates},
	})

	return &file, nil
}

// UpdateReviewStatus hides or shows a review. Rating aggregates are unaffected.
func (s *AdminService) UpdateReviewStatus(ctx context.Context, reviewID, adminID uuid.UUID, status models.ReviewVisibility) (*models.Review, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	db := s.db.WithContext(ctx)
	var review models.Review
	if err := db.First(&review, "id = ?", reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	oldStatus := review.ReviewStatus
	if err := db.Model(&review).Update("review_status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update review status: %w", err)
	}
	review.ReviewStatus = status

	s.activity.Record(ctx, Activity{
		UserID:       adminID,
		Action:       models.ActivityModerated,
		ResourceType: "review",
		ResourceID:   &review.ID,
		Details:      map[string]interface{}{"old": oldStatus, "new": status},
	})

	return &review, nil
}

// User Management
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID, adminID uuid.UUID, status models.UserStatus, reason string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Admin accounts are managed out of band
	if user.IsAdmin() {
		return ErrForbidden
	}

	oldStatus := user.Status
	if err := db.Model(&user).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.activity.Record(ctx, Activity{
		UserID:       adminID,
		Action:       models.ActivityModerated,
		ResourceType: "user",
		ResourceID:   &user.ID,
		Details:      map[string]interface{}{"old": oldStatus, "new": status, "reason": reason},
	})

	return nil
}

func (s *AdminService) GetPurchases(ctx context.Context, filter AdminPurchaseFilter) ([]models.Purchase, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Purchase{})

	// Apply filters
	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.FileID != nil {
		query = query.Where("file_id = ?", *filter.FileID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "purchase_price", "payment_status"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var purchases []models.Purchase
	if err := query.Preload("File").Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}
