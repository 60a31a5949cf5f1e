// internal/services/entitlement_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/javajoker/filemart/internal/models"
)

type EntitlementServiceTestSuite struct {
	storeSuite
	service   *EntitlementService
	purchases *PurchaseService
	ledger    *LedgerService
}

func (suite *EntitlementServiceTestSuite) SetupTest() {
	suite.storeSuite.SetupTest()
	suite.service = NewEntitlementService(suite.db)
	suite.purchases = NewPurchaseService(suite.db, suite.cfg, suite.activity)
	suite.ledger = NewLedgerService(suite.db, suite.activity)
}

func actorOf(user *models.User) *Actor {
	return &Actor{ID: user.ID, IsAdmin: user.IsAdmin()}
}

func (suite *EntitlementServiceTestSuite) TestAccessMatrix() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	carol := suite.createAccount("carol", 0)
	admin := suite.createAdmin("root")

	public := suite.createFile(alice, 100)
	hidden := suite.createFile(alice, 100, private())
	unapproved := suite.createFile(alice, 100, pending())
	retired := suite.createFile(alice, 100, inactive())

	_, err := suite.purchases.ExecutePurchase(suite.ctx, public.ID, bob.ID)
	suite.Require().NoError(err)
	_, err = suite.purchases.ExecutePurchase(suite.ctx, hidden.ID, bob.ID)
	suite.Require().NoError(err)

	tests := []struct {
		name  string
		file  *models.File
		actor *Actor
		want  AccessLevel
	}{
		{"owner of public file", public, actorOf(alice), AccessDownload},
		{"owner of pending file", unapproved, actorOf(alice), AccessDownload},
		{"owner of inactive file", retired, actorOf(alice), AccessDownload},
		{"admin on pending file", unapproved, actorOf(admin), AccessDownload},
		{"admin on private file", hidden, actorOf(admin), AccessDownload},
		{"buyer of public file", public, actorOf(bob), AccessDownload},
		{"buyer of private file", hidden, actorOf(bob), AccessDownload},
		{"stranger on public file", public, actorOf(carol), AccessPreview},
		{"stranger on private file", hidden, actorOf(carol), AccessNone},
		{"stranger on pending file", unapproved, actorOf(carol), AccessNone},
		{"stranger on inactive file", retired, actorOf(carol), AccessNone},
		{"anonymous on public file", public, nil, AccessPreview},
		{"anonymous on private file", hidden, nil, AccessNone},
	}

	for _, tt := range tests {
		level, err := suite.service.Resolve(suite.ctx, tt.file.ID, tt.actor)
		suite.Require().NoError(err, tt.name)
		suite.Equal(tt.want, level, tt.name)
	}
}

func (suite *EntitlementServiceTestSuite) TestDelistingHidesPurchasedFile() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	f1 := suite.createFile(alice, 100)

	_, err := suite.purchases.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.db.Model(f1).Update("is_active", false).Error)

	level, err := suite.service.Resolve(suite.ctx, f1.ID, actorOf(bob))
	suite.Require().NoError(err)
	suite.Equal(AccessNone, level)
}

func (suite *EntitlementServiceTestSuite) TestRefundRevokesDownload() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	admin := suite.createAdmin("root")
	f1 := suite.createFile(alice, 100)

	result, err := suite.purchases.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)

	level, err := suite.service.Resolve(suite.ctx, f1.ID, actorOf(bob))
	suite.Require().NoError(err)
	suite.Equal(AccessDownload, level)

	_, err = suite.ledger.RefundPurchase(suite.ctx, result.PurchaseID, admin.ID, "broken archive")
	suite.Require().NoError(err)

	level, err = suite.service.Resolve(suite.ctx, f1.ID, actorOf(bob))
	suite.Require().NoError(err)
	suite.Equal(AccessPreview, level)
}

func (suite *EntitlementServiceTestSuite) TestCanAccessEnforcesLevel() {
	alice := suite.createAccount("alice", 0)
	carol := suite.createAccount("carol", 0)
	f1 := suite.createFile(alice, 100)

	file, level, err := suite.service.CanAccess(suite.ctx, f1.ID, actorOf(carol), AccessDownload)
	suite.ErrorIs(err, ErrForbidden)
	suite.Equal(AccessPreview, level)
	suite.NotNil(file)

	_, level, err = suite.service.CanAccess(suite.ctx, f1.ID, actorOf(carol), AccessPreview)
	suite.Require().NoError(err)
	suite.Equal(AccessPreview, level)

	suite.Eventually(func() bool {
		return suite.file(f1.ID).TotalViews == 1
	}, 2*time.Second, 20*time.Millisecond)
	suite.Zero(suite.file(f1.ID).TotalDownloads)
}

func (suite *EntitlementServiceTestSuite) TestCanAccessCountsBuyerDownloads() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	f1 := suite.createFile(alice, 100)

	_, err := suite.purchases.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), suite.file(f1.ID).TotalDownloads)

	_, level, err := suite.service.CanAccess(suite.ctx, f1.ID, actorOf(bob), AccessDownload)
	suite.Require().NoError(err)
	suite.Equal(AccessDownload, level)

	suite.Eventually(func() bool {
		return suite.file(f1.ID).TotalDownloads == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func (suite *EntitlementServiceTestSuite) TestOwnerAccessIsNotCounted() {
	alice := suite.createAccount("alice", 0)
	f1 := suite.createFile(alice, 100)

	_, level, err := suite.service.CanAccess(suite.ctx, f1.ID, actorOf(alice), AccessDownload)
	suite.Require().NoError(err)
	suite.Equal(AccessDownload, level)

	suite.Never(func() bool {
		return suite.file(f1.ID).TotalDownloads != 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func (suite *EntitlementServiceTestSuite) TestUnknownFile() {
	alice := suite.createAccount("alice", 0)

	_, err := suite.service.Resolve(suite.ctx, alice.ID, actorOf(alice))
	suite.ErrorIs(err, ErrFileNotFound)

	_, _, err = suite.service.CanAccess(suite.ctx, alice.ID, nil, AccessPreview)
	suite.ErrorIs(err, ErrFileNotFound)
}

func (suite *EntitlementServiceTestSuite) TestAccessLevelText() {
	for level, want := range map[AccessLevel]string{
		AccessNone:     "none",
		AccessPreview:  "preview",
		AccessDownload: "download",
	} {
		text, err := level.MarshalText()
		suite.Require().NoError(err)
		suite.Equal(want, string(text))
	}
	suite.True(AccessNone < AccessPreview && AccessPreview < AccessDownload)
}

func TestEntitlementServiceSuite(t *testing.T) {
	suite.Run(t, new(EntitlementServiceTestSuite))
}
