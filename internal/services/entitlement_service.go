// internal/services/entitlement_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
)

// AccessLevel is what a user may do with a file's bytes. Levels are ordered.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessPreview
	AccessDownload
)

func (l AccessLevel) String() string {
	switch l {
	case AccessPreview:
		return "preview"
	case AccessDownload:
		return "download"
	default:
		return "none"
	}
}

func (l AccessLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Actor is the authenticated caller. A nil *Actor is an anonymous visitor.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

type EntitlementService struct {
	db             *gorm.DB
	counterTimeout time.Duration
}

func NewEntitlementService(db *gorm.DB) *EntitlementService {
	return &EntitlementService{db: db, counterTimeout: 5 * time.Second}
}

// Resolve returns the access level actor holds on the file. It has no side effects.
func (s *EntitlementService) Resolve(ctx context.Context, fileID uuid.UUID, actor *Actor) (AccessLevel, error) {
	file, err := s.loadFile(ctx, fileID)
	if err != nil {
		return AccessNone, err
	}
	return s.levelFor(ctx, file, actor)
}

// CanAccess resolves the actor's level and fails with ErrForbidden when it is
// below required. On success the file's view or download counter is bumped
// in the background for callers other than the owner.
func (s *EntitlementService) CanAccess(ctx context.Context, fileID uuid.UUID, actor *Actor, required AccessLevel) (*models.File, AccessLevel, error) {
	file, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, AccessNone, err
	}

	level, err := s.levelFor(ctx, file, actor)
	if err != nil {
		return nil, AccessNone, err
	}
	if level < required {
		return file, level, ErrForbidden
	}

	if actor == nil || actor.ID != file.OwnerID {
		switch required {
		case AccessDownload:
			go s.incrementCounter(file.ID, "total_downloads")
		case AccessPreview:
			go s.incrementCounter(file.ID, "total_views")
		}
	}

	return file, level, nil
}

func (s *EntitlementService) loadFile(ctx context.Context, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return &file, nil
}

func (s *EntitlementService) levelFor(ctx context.Context, file *models.File, actor *Actor) (AccessLevel, error) {
	if actor != nil && (actor.IsAdmin || actor.ID == file.OwnerID) {
		return AccessDownload, nil
	}

	// Unlisted files are visible to their owner and administrators only.
	if !file.Listed() {
		return AccessNone, nil
	}

	if actor != nil {
		purchased, err := completedPurchaseExists(s.db.WithContext(ctx), file.ID, actor.ID)
		if err != nil {
			return AccessNone, err
		}
		if purchased {
			return AccessDownload, nil
		}
	}

	if file.IsPublic {
		return AccessPreview, nil
	}
	return AccessNone, nil
}

func (s *EntitlementService) incrementCounter(fileID uuid.UUID, column string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.counterTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Model(&models.File{}).Where("id = ?", fileID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"file_id": fileID,
			"counter": column,
		}).Warn("Failed to increment file counter")
	}
}
