// internal/services/file_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
)

type FileService struct {
	db       *gorm.DB
	activity *ActivityRecorder
}

// CreateFileRequest registers an uploaded object. The upload itself happens elsewhere.
type CreateFileRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=255"`
	Description  string `json:"description" validate:"max=5000"`
	OriginalName string `json:"original_name" validate:"required,max=255"`
	PreviewName  string `json:"preview_name" validate:"max=255"`
	Price        int64  `json:"price" validate:"gte=0"`
	FinalPrice   *int64 `json:"final_price,omitempty" validate:"omitempty,gte=0"`
	IsPublic     bool   `json:"is_public"`
}

type UpdatePricingRequest struct {
	Price      int64 `json:"price" validate:"gte=0"`
	FinalPrice int64 `json:"final_price" validate:"gte=0,ltefield=Price"`
}

func NewFileService(db *gorm.DB, activity *ActivityRecorder) *FileService {
	return &FileService{
		db:       db,
		activity: activity,
	}
}

// CreateFile stores the metadata of a new file awaiting moderation.
func (s *FileService) CreateFile(ctx context.Context, ownerID uuid.UUID, req *CreateFileRequest) (*models.File, error) {
	finalPrice := req.Price
	if req.FinalPrice != nil {
		finalPrice = *req.FinalPrice
	}
	if err := validatePricing(req.Price, finalPrice); err != nil {
		return nil, err
	}

	file := &models.File{
		OwnerID:      ownerID,
		Title:        req.Title,
		Description:  req.Description,
		StorageKey:   GenerateObjectKey("files/"+ownerID.String(), req.OriginalName),
		Price:        req.Price,
		FinalPrice:   finalPrice,
		ReviewStatus: models.FileReviewPending,
		IsActive:     true,
		IsPublic:     req.IsPublic,
	}
	if req.PreviewName != "" {
		file.PreviewKey = GenerateObjectKey("previews/"+ownerID.String(), req.PreviewName)
	}

	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	logrus.WithFields(logrus.Fields{"file_id": file.ID, "owner_id": ownerID}).Info("File registered")
	return file, nil
}

// GetFile returns a file. Files that are not listed are only visible to their
// owner and administrators.
func (s *FileService) GetFile(ctx context.Context, fileID uuid.UUID, actor *Actor) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).Preload("Owner", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username")
	}).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !file.Listed() && (actor == nil || (!actor.IsAdmin && actor.ID != file.OwnerID)) {
		return nil, ErrFileNotFound
	}

	return &file, nil
}

// UpdatePricing changes the list and final price. Existing purchases keep the
// price they paid.
func (s *FileService) UpdatePricing(ctx context.Context, fileID, ownerID uuid.UUID, req *UpdatePricingRequest) (*models.File, error) {
	if err := validatePricing(req.Price, req.FinalPrice); err != nil {
		return nil, err
	}

	var file *models.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if locked.OwnerID != ownerID {
			return ErrForbidden
		}

		oldPrice, oldFinal := locked.Price, locked.FinalPrice
		if err := tx.Model(locked).Updates(map[string]interface{}{
			"price":       req.Price,
			"final_price": req.FinalPrice,
		}).Error; err != nil {
			return fmt.Errorf("failed to update pricing: %w", err)
		}
		locked.Price, locked.FinalPrice = req.Price, req.FinalPrice

		s.activity.RecordTx(tx, Activity{
			UserID:       ownerID,
			Action:       models.ActivityRepriced,
			ResourceType: "file",
			ResourceID:   &locked.ID,
			Details: map[string]interface{}{
				"old_price": oldPrice, "old_final_price": oldFinal,
				"price": req.Price, "final_price": req.FinalPrice,
			},
		})

		file = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return file, nil
}

func validatePricing(price, finalPrice int64) error {
	if price < 0 || finalPrice < 0 || finalPrice > price {
		return ErrInvalidPrice
	}
	return nil
}
