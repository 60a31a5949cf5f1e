// internal/services/purchase_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

type PurchaseService struct {
	db             *gorm.DB
	activity       *ActivityRecorder
	commissionRate decimal.Decimal
	newReference   func() (string, error)
}

type PurchaseResult struct {
	PurchaseID           uuid.UUID `json:"purchase_id"`
	TransactionReference string    `json:"transaction_reference"`
	PurchasePrice        int64     `json:"purchase_price"`
	CommissionAmount     int64     `json:"commission_amount"`
	SellerAmount         int64     `json:"seller_amount"`
	NewBalance           int64     `json:"new_balance"`
}

func NewPurchaseService(db *gorm.DB, cfg *config.Config, activity *ActivityRecorder) *PurchaseService {
	return &PurchaseService{
		db:             db,
		activity:       activity,
		commissionRate: cfg.Ledger.CommissionRate,
		newReference:   utils.GenerateTransactionReference,
	}
}

// ExecutePurchase moves final_price from the buyer to the file owner, minus
// commission, and records the entitlement. Either every write commits or none does.
func (s *PurchaseService) ExecutePurchase(ctx context.Context, fileID, buyerID uuid.UUID) (*PurchaseResult, error) {
	reference, err := s.newReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction reference: %w", err)
	}

	var result *PurchaseResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		file, err := lockFile(tx, fileID)
		if err != nil {
			return err
		}
		if !file.Listed() {
			return ErrInvalidFile
		}
		if file.OwnerID == buyerID {
			return ErrSelfPurchase
		}

		purchased, err := purchaseExists(tx, fileID, buyerID)
		if err != nil {
			return err
		}
		if purchased {
			return ErrAlreadyPurchased
		}

		accounts, err := lockAccounts(tx, buyerID, file.OwnerID)
		if err != nil {
			return err
		}
		buyer, seller := accounts[buyerID], accounts[file.OwnerID]
		if buyer.Status != models.UserStatusActive {
			return ErrAccountInactive
		}

		price := file.FinalPrice
		if buyer.Balance < price {
			return ErrInsufficientFunds
		}

		commission := CalculateCommission(price, s.commissionRate)
		sellerAmount := price - commission

		purchase := &models.Purchase{
			FileID:               file.ID,
			BuyerID:              buyer.ID,
			SellerID:             seller.ID,
			PurchasePrice:        price,
			CommissionAmount:     commission,
			SellerAmount:         sellerAmount,
			TransactionReference: reference,
			PaymentStatus:        models.PaymentStatusCompleted,
		}
		// The savepoint keeps tx usable after a constraint failure.
		if err := tx.Transaction(func(sp *gorm.DB) error {
			return sp.Create(purchase).Error
		}); err != nil {
			if !isUniqueViolation(err) {
				return fmt.Errorf("failed to create purchase: %w", err)
			}
			// Only a concurrent purchase of the same file is a duplicate. Any other
			// collision, such as a reused transaction reference, is retryable.
			raced, checkErr := purchaseExists(tx, fileID, buyerID)
			if checkErr != nil {
				return checkErr
			}
			if raced {
				return ErrAlreadyPurchased
			}
			return fmt.Errorf("failed to create purchase %s: %w", reference, err)
		}

		if _, err := post(tx, posting{
			account:     buyer,
			amount:      -price,
			reference:   reference + "_BUY",
			entryType:   models.LedgerEntryPurchase,
			description: fmt.Sprintf("Purchase of %q", file.Title),
			fileID:      &file.ID,
			purchaseID:  &purchase.ID,
		}); err != nil {
			return err
		}

		if _, err := post(tx, posting{
			account:     seller,
			amount:      sellerAmount,
			reference:   reference + "_SELL",
			entryType:   models.LedgerEntrySale,
			description: fmt.Sprintf("Sale of %q (commission %d)", file.Title, commission),
			fileID:      &file.ID,
			purchaseID:  &purchase.ID,
		}); err != nil {
			return err
		}

		if err := refreshFileSales(tx, file.ID); err != nil {
			return err
		}
		if err := tx.Model(&models.File{}).Where("id = ?", file.ID).
			UpdateColumn("total_downloads", gorm.Expr("total_downloads + 1")).Error; err != nil {
			return fmt.Errorf("failed to update download count: %w", err)
		}
		if err := refreshAccountCounters(tx, buyer.ID, seller.ID); err != nil {
			return err
		}

		s.activity.RecordTx(tx,
			Activity{
				UserID:       buyer.ID,
				Action:       models.ActivityPurchased,
				ResourceType: "file",
				ResourceID:   &file.ID,
				Reference:    reference,
				Amount:       -price,
				Details:      map[string]interface{}{"title": file.Title, "seller_id": seller.ID.String()},
			},
			Activity{
				UserID:       seller.ID,
				Action:       models.ActivitySold,
				ResourceType: "file",
				ResourceID:   &file.ID,
				Reference:    reference,
				Amount:       sellerAmount,
				Details:      map[string]interface{}{"title": file.Title, "buyer_id": buyer.ID.String(), "commission": commission},
			},
		)

		result = &PurchaseResult{
			PurchaseID:           purchase.ID,
			TransactionReference: reference,
			PurchasePrice:        price,
			CommissionAmount:     commission,
			SellerAmount:         sellerAmount,
			NewBalance:           buyer.Balance,
		}
		return nil
	})

	fields := logrus.Fields{"file_id": fileID, "buyer_id": buyerID, "reference": reference}
	if err != nil {
		if Kind(err) == KindInfrastructure {
			logrus.WithError(err).WithFields(fields).Error("Purchase failed")
		} else {
			logrus.WithFields(fields).WithField("reason", err.Error()).Info("Purchase rejected")
		}
		return nil, err
	}

	logrus.WithFields(fields).WithField("amount", result.PurchasePrice).Info("Purchase completed")
	return result, nil
}
