// internal/services/purchase_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

type PurchaseServiceTestSuite struct {
	storeSuite
	service *PurchaseService
}

func (suite *PurchaseServiceTestSuite) SetupTest() {
	suite.storeSuite.SetupTest()
	suite.service = NewPurchaseService(suite.db, suite.cfg, suite.activity)
}

func (suite *PurchaseServiceTestSuite) TestPurchaseTransfersPointsMinusCommission() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 150)
	f1 := suite.createFile(alice, 100)

	result, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)

	suite.Equal(int64(50), result.NewBalance)
	suite.Equal(int64(100), result.PurchasePrice)
	suite.Equal(int64(10), result.CommissionAmount)
	suite.Equal(int64(90), result.SellerAmount)

	suite.Equal(int64(50), suite.account(bob.ID).Balance)
	suite.Equal(int64(90), suite.account(alice.ID).Balance)

	var purchase models.Purchase
	suite.Require().NoError(suite.db.First(&purchase, "id = ?", result.PurchaseID).Error)
	suite.Equal(models.PaymentStatusCompleted, purchase.PaymentStatus)
	suite.Equal(alice.ID, purchase.SellerID)
	suite.Equal(int64(10), purchase.CommissionAmount)
	suite.Equal(int64(90), purchase.SellerAmount)
	suite.Equal(purchase.PurchasePrice-purchase.SellerAmount, purchase.CommissionAmount)

	file := suite.file(f1.ID)
	suite.Equal(int64(1), file.TotalSales)
	suite.Equal(int64(1), file.TotalDownloads)
	suite.Equal(int64(100), file.TotalRevenue)

	suite.Equal(int64(1), suite.account(bob.ID).TotalPurchases)
	suite.Equal(int64(1), suite.account(alice.ID).TotalSales)
}

func (suite *PurchaseServiceTestSuite) TestPurchaseWritesTwoLedgerEntries() {
	alice := suite.createAccount("alice", 20)
	bob := suite.createAccount("bob", 150)
	f1 := suite.createFile(alice, 100)
	suite.service.newReference = func() (string, error) { return "TXNFIXED", nil }

	result, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Equal("TXNFIXED", result.TransactionReference)

	var entries []models.LedgerEntry
	suite.Require().NoError(suite.db.Where("purchase_id = ?", result.PurchaseID).Order("reference").Find(&entries).Error)
	suite.Require().Len(entries, 2)

	buy, sell := entries[0], entries[1]
	suite.Equal("TXNFIXED_BUY", buy.Reference)
	suite.Equal(bob.ID, buy.AccountID)
	suite.Equal(int64(-100), buy.Amount)
	suite.Equal(int64(150), buy.BalanceBefore)
	suite.Equal(int64(50), buy.BalanceAfter)

	suite.Equal("TXNFIXED_SELL", sell.Reference)
	suite.Equal(alice.ID, sell.AccountID)
	suite.Equal(int64(90), sell.Amount)
	suite.Equal(int64(20), sell.BalanceBefore)
	suite.Equal(int64(110), sell.BalanceAfter)

	suite.Equal(int64(2), suite.count(&models.ActivityLog{}, "reference = ?", "TXNFIXED"))
}

func (suite *PurchaseServiceTestSuite) TestPurchaseChargesFinalPrice() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 150)
	f1 := suite.createFile(alice, 200, discounted(120))

	result, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(120), result.PurchasePrice)
	suite.Equal(int64(30), result.NewBalance)
	suite.Equal(int64(108), suite.account(alice.ID).Balance)
}

func (suite *PurchaseServiceTestSuite) TestSelfPurchaseIsRejected() {
	alice := suite.createAccount("alice", 500)
	f1 := suite.createFile(alice, 100)

	_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, alice.ID)
	suite.ErrorIs(err, ErrSelfPurchase)
	suite.Equal(int64(500), suite.account(alice.ID).Balance)
	suite.Zero(suite.count(&models.Purchase{}, ""))
	suite.Zero(suite.count(&models.LedgerEntry{}, ""))
}

func (suite *PurchaseServiceTestSuite) TestInsufficientFundsLeavesNoTrace() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 50)
	f1 := suite.createFile(alice, 100)

	_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.ErrorIs(err, ErrInsufficientFunds)
	suite.Equal(int64(50), suite.account(bob.ID).Balance)
	suite.Equal(int64(0), suite.account(alice.ID).Balance)
	suite.Zero(suite.count(&models.Purchase{}, ""))
	suite.Zero(suite.count(&models.LedgerEntry{}, ""))
	suite.Zero(suite.file(f1.ID).TotalSales)
}

func (suite *PurchaseServiceTestSuite) TestSecondPurchaseIsRejected() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	f1 := suite.createFile(alice, 100)

	_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)

	_, err = suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.ErrorIs(err, ErrAlreadyPurchased)
	suite.Equal(int64(400), suite.account(bob.ID).Balance)
	suite.Equal(int64(1), suite.count(&models.Purchase{}, ""))
}

func (suite *PurchaseServiceTestSuite) TestConcurrentPurchasesSucceedOnce() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 10000)
	f1 := suite.createFile(alice, 100)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				failures = append(failures, err)
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	suite.Len(failures, attempts-1)
	for _, err := range failures {
		suite.ErrorIs(err, ErrAlreadyPurchased)
	}
	suite.Equal(int64(9900), suite.account(bob.ID).Balance)
	suite.Equal(int64(90), suite.account(alice.ID).Balance)
	suite.Equal(int64(2), suite.count(&models.LedgerEntry{}, ""))
}

func (suite *PurchaseServiceTestSuite) TestUnavailableFilesCannotBePurchased() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)

	for name, file := range map[string]*models.File{
		"pending":  suite.createFile(alice, 100, pending()),
		"inactive": suite.createFile(alice, 100, inactive()),
	} {
		_, err := suite.service.ExecutePurchase(suite.ctx, file.ID, bob.ID)
		suite.ErrorIs(err, ErrInvalidFile, name)
	}

	_, err := suite.service.ExecutePurchase(suite.ctx, alice.ID, bob.ID)
	suite.ErrorIs(err, ErrFileNotFound)
	suite.Equal(int64(500), suite.account(bob.ID).Balance)
}

func (suite *PurchaseServiceTestSuite) TestSuspendedBuyerCannotPurchase() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 500)
	suite.Require().NoError(suite.db.Model(bob).Update("status", models.UserStatusSuspended).Error)
	f1 := suite.createFile(alice, 100)

	_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.ErrorIs(err, ErrAccountInactive)
}

func (suite *PurchaseServiceTestSuite) TestFreeFilePurchase() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 0)
	f1 := suite.createFile(alice, 0)

	result, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Zero(result.NewBalance)
	suite.Zero(result.CommissionAmount)
	suite.Equal(int64(1), suite.file(f1.ID).TotalSales)
}

func (suite *PurchaseServiceTestSuite) TestUniqueViolationIsDetected() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 0)
	f1 := suite.createFile(alice, 0)

	first := &models.Purchase{
		FileID: f1.ID, BuyerID: bob.ID, SellerID: alice.ID,
		TransactionReference: "TXN1", PaymentStatus: models.PaymentStatusCompleted,
	}
	suite.Require().NoError(suite.db.Create(first).Error)

	second := &models.Purchase{
		FileID: f1.ID, BuyerID: bob.ID, SellerID: alice.ID,
		TransactionReference: "TXN2", PaymentStatus: models.PaymentStatusCompleted,
	}
	err := suite.db.Create(second).Error
	suite.Require().Error(err)
	suite.True(isUniqueViolation(err))
	suite.False(isUniqueViolation(ErrFileNotFound))
}

func (suite *PurchaseServiceTestSuite) TestReusedReferenceIsRetryable() {
	alice := suite.createAccount("alice", 0)
	bob := suite.createAccount("bob", 300)
	f1 := suite.createFile(alice, 100)
	f2 := suite.createFile(alice, 100)
	suite.service.newReference = func() (string, error) { return "TXNFIXED", nil }

	_, err := suite.service.ExecutePurchase(suite.ctx, f1.ID, bob.ID)
	suite.Require().NoError(err)

	_, err = suite.service.ExecutePurchase(suite.ctx, f2.ID, bob.ID)
	suite.Require().Error(err)
	suite.NotErrorIs(err, ErrAlreadyPurchased)
	suite.Equal(KindInfrastructure, Kind(err))

	suite.Equal(int64(200), suite.account(bob.ID).Balance)
	suite.Equal(int64(0), suite.file(f2.ID).TotalSales)
	suite.Equal(int64(1), suite.count(&models.Purchase{}, "buyer_id = ?", bob.ID))
	suite.Equal(int64(1), suite.count(&models.LedgerEntry{}, "account_id = ?", bob.ID))

	suite.service.newReference = utils.GenerateTransactionReference
	result, err := suite.service.ExecutePurchase(suite.ctx, f2.ID, bob.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(100), result.NewBalance)
}

func TestPurchaseServiceSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		price int64
		rate  string
		want  int64
	}{
		{100, "0.10", 10},
		{15, "0.10", 1},
		{99, "0.15", 14},
		{1, "0.10", 0},
		{0, "0.10", 0},
		{1000, "0", 0},
		{333, "0.333", 110},
	}

	for _, tt := range tests {
		got := CalculateCommission(tt.price, decimal.RequireFromString(tt.rate))
		assert.Equal(t, tt.want, got, "price=%d rate=%s", tt.price, tt.rate)
		assert.GreaterOrEqual(t, tt.price-got, int64(0))
	}
}
