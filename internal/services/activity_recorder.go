// internal/services/activity_recorder.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
)

// ActivityRecorder appends activity rows. Writes are best-effort: a failure
// is logged and never returned to the caller.
type ActivityRecorder struct {
	db *gorm.DB
}

func NewActivityRecorder(db *gorm.DB) *ActivityRecorder {
	return &ActivityRecorder{db: db}
}

// Activity describes one event to append.
type Activity struct {
	UserID       uuid.UUID
	Action       models.ActivityAction
	ResourceType string
	ResourceID   *uuid.UUID
	Reference    string
	Amount       int64
	Details      map[string]interface{}
}

// ClientInfo identifies the client a request came from. It is attached to the
// request context and copied onto every activity row written for that request.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type clientInfoKey struct{}

func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

func clientInfoFrom(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}

// RecordTx appends the activities inside tx under a savepoint, so a failed
// insert leaves the surrounding transaction usable.
func (r *ActivityRecorder) RecordTx(tx *gorm.DB, activities ...Activity) {
	if len(activities) == 0 {
		return
	}

	rows := toActivityLogs(clientInfoFrom(tx.Statement.Context), activities)
	err := tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(&rows).Error
	})
	if err != nil {
		logActivityFailure(err, activities)
	}
}

// Record appends the activities outside any transaction.
func (r *ActivityRecorder) Record(ctx context.Context, activities ...Activity) {
	if len(activities) == 0 {
		return
	}

	rows := toActivityLogs(clientInfoFrom(ctx), activities)
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		logActivityFailure(err, activities)
	}
}

func toActivityLogs(client ClientInfo, activities []Activity) []models.ActivityLog {
	rows := make([]models.ActivityLog, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, models.ActivityLog{
			UserID:       a.UserID,
			Action:       a.Action,
			ResourceType: a.ResourceType,
			ResourceID:   a.ResourceID,
			Reference:    a.Reference,
			Amount:       a.Amount,
			Details:      models.JSONB(a.Details),
			IPAddress:    client.IPAddress,
			UserAgent:    client.UserAgent,
		})
	}
	return rows
}

func logActivityFailure(err error, activities []Activity) {
	for _, a := range activities {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   a.UserID,
			"action":    a.Action,
			"reference": a.Reference,
		}).Warn("Failed to record activity")
	}
}
