// internal/services/ledger_tx.go
package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/filemart/internal/models"
)

// Helpers shared by the purchase, refund and adjustment transactions.
// Every function here expects to run inside an open transaction.

var forUpdate = clause.Locking{Strength: "UPDATE"}

// CalculateCommission returns the platform cut of price, rounded down to a whole point.
func CalculateCommission(price int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(price).Mul(rate).Floor().IntPart()
}

func lockFile(tx *gorm.DB, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	if err := tx.Clauses(forUpdate).First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	return &file, nil
}

// lockAccounts locks the given accounts in a stable order so that two
// transfers touching the same pair of accounts cannot deadlock.
func lockAccounts(tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*models.User, error) {
	ordered := make([]uuid.UUID, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].String() < ordered[j].String()
	})

	accounts := make(map[uuid.UUID]*models.User, len(ordered))
	for _, id := range ordered {
		if _, seen := accounts[id]; seen {
			continue
		}
		var account models.User
		if err := tx.Clauses(forUpdate).First(&account, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAccountNotFound
			}
			return nil, fmt.Errorf("failed to lock account: %w", err)
		}
		accounts[id] = &account
	}
	return accounts, nil
}

type posting struct {
	account     *models.User
	amount      int64
	reference   string
	entryType   models.LedgerEntryType
	description string
	fileID      *uuid.UUID
	purchaseID  *uuid.UUID
}

// post applies a signed balance change and writes its ledger entry. The
// update is conditional on the balance staying non-negative.
func post(tx *gorm.DB, p posting) (*models.LedgerEntry, error) {
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance + ? >= 0", p.account.ID, p.amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", p.amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInsufficientFunds
	}

	entry := &models.LedgerEntry{
		Reference:     p.reference,
		AccountID:     p.account.ID,
		EntryType:     p.entryType,
		Amount:        p.amount,
		BalanceBefore: p.account.Balance,
		BalanceAfter:  p.account.Balance + p.amount,
		Description:   p.description,
		FileID:        p.fileID,
		PurchaseID:    p.purchaseID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	p.account.Balance = entry.BalanceAfter
	return entry, nil
}

// purchaseExists reports whether buyerID holds a purchase of fileID in any status.
func purchaseExists(tx *gorm.DB, fileID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Purchase{}).
		Where("file_id = ? AND buyer_id = ?", fileID, buyerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing purchase: %w", err)
	}
	return count > 0, nil
}

func completedPurchaseExists(tx *gorm.DB, fileID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Purchase{}).
		Where("file_id = ? AND buyer_id = ? AND payment_status = ?", fileID, buyerID, models.PaymentStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return count > 0, nil
}

// refreshFileSales recomputes total_sales and total_revenue from completed purchases.
func refreshFileSales(tx *gorm.DB, fileID uuid.UUID) error {
	var agg struct {
		Sales   int64
		Revenue int64
	}
	err := tx.Model(&models.Purchase{}).
		Select("COUNT(*) AS sales, COALESCE(SUM(purchase_price), 0) AS revenue").
		Where("file_id = ? AND payment_status = ?", fileID, models.PaymentStatusCompleted).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate sales: %w", err)
	}

	err = tx.Model(&models.File{}).Where("id = ?", fileID).UpdateColumns(map[string]interface{}{
		"total_sales":   agg.Sales,
		"total_revenue": agg.Revenue,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update file sales: %w", err)
	}
	return nil
}

// refreshAccountCounters recomputes total_purchases and total_sales for each account.
func refreshAccountCounters(tx *gorm.DB, ids ...uuid.UUID) error {
	for _, id := range ids {
		var purchases, sales int64
		if err := tx.Model(&models.Purchase{}).
			Where("buyer_id = ? AND payment_status = ?", id, models.PaymentStatusCompleted).
			Count(&purchases).Error; err != nil {
			return fmt.Errorf("failed to count purchases: %w", err)
		}
		if err := tx.Model(&models.Purchase{}).
			Where("seller_id = ? AND payment_status = ?", id, models.PaymentStatusCompleted).
			Count(&sales).Error; err != nil {
			return fmt.Errorf("failed to count sales: %w", err)
		}

		err := tx.Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
			"total_purchases": purchases,
			"total_sales":     sales,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update account counters: %w", err)
		}
	}
	return nil
}
