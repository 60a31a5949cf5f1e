// internal/services/activity_recorder_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
)

type ActivityRecorderTestSuite struct {
	storeSuite
}

func (s *ActivityRecorderTestSuite) TestRecordCopiesClientInfo() {
	alice := s.createAccount("alice", 0)
	ctx := WithClientInfo(s.ctx, ClientInfo{IPAddress: "203.0.113.7", UserAgent: "filemart-test/1.0"})

	s.activity.Record(ctx, Activity{
		UserID:       alice.ID,
		Action:       models.ActivityRepriced,
		ResourceType: "file",
		Details:      map[string]interface{}{"price": 10},
	})

	var row models.ActivityLog
	s.Require().NoError(s.db.First(&row, "user_id = ?", alice.ID).Error)
	s.Equal(models.ActivityRepriced, row.Action)
	s.Equal("203.0.113.7", row.IPAddress)
	s.Equal("filemart-test/1.0", row.UserAgent)
}

func (s *ActivityRecorderTestSuite) TestRecordWithoutClientInfo() {
	alice := s.createAccount("alice", 0)

	s.activity.Record(context.Background(), Activity{UserID: alice.ID, Action: models.ActivityRated, ResourceType: "file"})
	s.activity.Record(s.ctx)

	var row models.ActivityLog
	s.Require().NoError(s.db.First(&row, "user_id = ?", alice.ID).Error)
	s.Empty(row.IPAddress)
	s.Equal(int64(1), s.count(&models.ActivityLog{}, ""))
}

func (s *ActivityRecorderTestSuite) TestRecordTxUsesTransactionContext() {
	alice := s.createAccount("alice", 0)
	ctx := WithClientInfo(s.ctx, ClientInfo{IPAddress: "198.51.100.2"})

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s.activity.RecordTx(tx,
			Activity{UserID: alice.ID, Action: models.ActivityPurchased, ResourceType: "purchase", Amount: -10},
			Activity{UserID: alice.ID, Action: models.ActivitySold, ResourceType: "purchase", Amount: 9},
		)
		return nil
	})
	s.Require().NoError(err)

	var rows []models.ActivityLog
	s.Require().NoError(s.db.Where("user_id = ?", alice.ID).Find(&rows).Error)
	s.Len(rows, 2)
	for _, row := range rows {
		s.Equal("198.51.100.2", row.IPAddress)
	}
}

func (s *ActivityRecorderTestSuite) TestPurchaseRecordsClientInfo() {
	alice := s.createAccount("alice", 0)
	bob := s.createAccount("bob", 100)
	file := s.createFile(alice, 50)

	ctx := WithClientInfo(s.ctx, ClientInfo{IPAddress: "192.0.2.44", UserAgent: "curl/8.0"})
	purchases := NewPurchaseService(s.db, s.cfg, s.activity)
	_, err := purchases.ExecutePurchase(ctx, file.ID, bob.ID)
	s.Require().NoError(err)

	s.Equal(int64(2), s.count(&models.ActivityLog{}, "ip_address = ? AND user_agent = ?", "192.0.2.44", "curl/8.0"))
}

func TestActivityRecorderSuite(t *testing.T) {
	suite.Run(t, new(ActivityRecorderTestSuite))
}
