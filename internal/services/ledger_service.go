// internal/services/ledger_service.go
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
	"github.com/javajoker/filemart/internal/utils"
)

// LedgerService performs administrative balance movements: full refunds and
// manual adjustments.
type LedgerService struct {
	db                     *gorm.DB
	activity               *ActivityRecorder
	newAdjustmentReference func() (string, error)
}

type RefundResult struct {
	PurchaseID    uuid.UUID `json:"purchase_id"`
	Reference     string    `json:"reference"`
	RefundedAt    time.Time `json:"refunded_at"`
	BuyerBalance  int64     `json:"buyer_balance"`
	SellerBalance int64     `json:"seller_balance"`
}

func NewLedgerService(db *gorm.DB, activity *ActivityRecorder) *LedgerService {
	return &LedgerService{
		db:                     db,
		activity:               activity,
		newAdjustmentReference: utils.GenerateAdjustmentReference,
	}
}

// RefundPurchase reverses a completed purchase in full. The seller must still
// hold seller_amount.
func (s *LedgerService) RefundPurchase(ctx context.Context, purchaseID, adminID uuid.UUID, reason string) (*RefundResult, error) {
	var result *RefundResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase models.Purchase
		if err := tx.Clauses(forUpdate).First(&purchase, "id = ?", purchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPurchaseNotFound
			}
			return fmt.Errorf("failed to load purchase: %w", err)
		}
		if !purchase.Completed() {
			return ErrAlreadyRefunded
		}

		var file models.File
		if err := tx.Unscoped().Clauses(forUpdate).First(&file, "id = ?", purchase.FileID).Error; err != nil {
			return fmt.Errorf("failed to lock file: %w", err)
		}

		accounts, err := lockAccounts(tx, purchase.BuyerID, purchase.SellerID)
		if err != nil {
			return err
		}
		buyer, seller := accounts[purchase.BuyerID], accounts[purchase.SellerID]
		if seller.Balance < purchase.SellerAmount {
			return ErrInsufficientFunds
		}

		ref := purchase.TransactionReference
		if _, err := post(tx, posting{
			account:     seller,
			amount:      -purchase.SellerAmount,
			reference:   ref + "_REFUND_SELL",
			entryType:   models.LedgerEntryChargeback,
			description: fmt.Sprintf("Refund of sale of %q", file.Title),
			fileID:      &file.ID,
			purchaseID:  &purchase.ID,
		}); err != nil {
			return err
		}
		if _, err := post(tx, posting{
			account:     buyer,
			amount:      purchase.PurchasePrice,
			reference:   ref + "_REFUND_BUY",
			entryType:   models.LedgerEntryRefund,
			description: fmt.Sprintf("Refund of purchase of %q", file.Title),
			fileID:      &file.ID,
			purchaseID:  &purchase.ID,
		}); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&purchase).Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusRefunded,
			"refunded_at":    now,
			"refund_reason":  reason,
		}).Error; err != nil {
			return fmt.Errorf("failed to update purchase: %w", err)
		}

		if err := refreshFileSales(tx, file.ID); err != nil {
			return err
		}
		if err := refreshAccountCounters(tx, buyer.ID, seller.ID); err != nil {
			return err
		}

		details := map[string]interface{}{"admin_id": adminID.String(), "reason": reason}
		s.activity.RecordTx(tx,
			Activity{
				UserID:       buyer.ID,
				Action:       models.ActivityRefunded,
				ResourceType: "purchase",
				ResourceID:   &purchase.ID,
				Reference:    ref,
				Amount:       purchase.PurchasePrice,
				Details:      details,
			},
			Activity{
				UserID:       seller.ID,
				Action:       models.ActivityRefunded,
				ResourceType: "purchase",
				ResourceID:   &purchase.ID,
				Reference:    ref,
				Amount:       -purchase.SellerAmount,
				Details:      details,
			},
		)

		result = &RefundResult{
			PurchaseID:    purchase.ID,
			Reference:     ref,
			RefundedAt:    now,
			BuyerBalance:  buyer.Balance,
			SellerBalance: seller.Balance,
		}
		return nil
	})

	fields := logrus.Fields{"purchase_id": purchaseID, "admin_id": adminID}
	if err != nil {
		if Kind(err) == KindInfrastructure {
			logrus.WithError(err).WithFields(fields).Error("Refund failed")
		} else {
			logrus.WithFields(fields).WithField("reason", err.Error()).Info("Refund rejected")
		}
		return nil, err
	}

	logrus.WithFields(fields).Info("Purchase refunded")
	return result, nil
}

// AdjustBalance credits (amount > 0) or debits (amount < 0) an account. A
// debit may not take the balance below zero.
func (s *LedgerService) AdjustBalance(ctx context.Context, accountID, adminID uuid.UUID, amount int64, reason string) (*models.LedgerEntry, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	reference, err := s.newAdjustmentReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate adjustment reference: %w", err)
	}

	var entry *models.LedgerEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts, err := lockAccounts(tx, accountID)
		if err != nil {
			return err
		}
		account := accounts[accountID]
		if account.Balance+amount < 0 {
			return ErrInsufficientFunds
		}

		entry, err = post(tx, posting{
			account:     account,
			amount:      amount,
			reference:   reference,
			entryType:   models.LedgerEntryAdjustment,
			description: reason,
		})
		if err != nil {
			return err
		}

		s.activity.RecordTx(tx, Activity{
			UserID:       account.ID,
			Action:       models.ActivityAdjusted,
			ResourceType: "account",
			ResourceID:   &account.ID,
			Reference:    reference,
			Amount:       amount,
			Details:      map[string]interface{}{"admin_id": adminID.String(), "reason": reason},
		})
		return nil
	})

	fields := logrus.Fields{"account_id": accountID, "admin_id": adminID, "amount": amount}
	if err != nil {
		if Kind(err) == KindInfrastructure {
			logrus.WithError(err).WithFields(fields).Error("Balance adjustment failed")
		}
		return nil, err
	}

	logrus.WithFields(fields).WithField("reference", reference).Info("Balance adjusted")
	return entry, nil
}
