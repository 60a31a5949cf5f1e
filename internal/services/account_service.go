// internal/services/account_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

// AccountService serves read models over balances, ledger entries and purchases.
// Every call reads the store; nothing is cached.
type AccountService struct {
	db *gorm.DB
}

type AccountBalance struct {
	AccountID      uuid.UUID `json:"account_id"`
	Balance        int64     `json:"balance"`
	TotalPurchases int64     `json:"total_purchases"`
	TotalSales     int64     `json:"total_sales"`
	TotalEarned    int64     `json:"total_earned"`
	TotalSpent     int64     `json:"total_spent"`
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AccountService) GetBalance(ctx context.Context, accountID uuid.UUID) (*AccountBalance, error) {
	user, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balance := &AccountBalance{
		AccountID:      user.ID,
		Balance:        user.Balance,
		TotalPurchases: user.TotalPurchases,
		TotalSales:     user.TotalSales,
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Purchase{}).
		Where("seller_id = ? AND payment_status = ?", accountID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(seller_amount), 0)").Scan(&balance.TotalEarned).Error; err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	if err := db.Model(&models.Purchase{}).
		Where("buyer_id = ? AND payment_status = ?", accountID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(purchase_price), 0)").Scan(&balance.TotalSpent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum spending: %w", err)
	}

	return balance, nil
}

func (s *AccountService) GetLedger(ctx context.Context, accountID uuid.UUID, params utils.PaginationParams) ([]models.LedgerEntry, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("account_id = ?", accountID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount"})
	query = utils.ApplyPagination(query, params)

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries: %w", err)
	}

	return entries, total, nil
}

func (s *AccountService) GetPurchases(ctx context.Context, buyerID uuid.UUID, params utils.PaginationParams) ([]models.Purchase, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("buyer_id = ?", buyerID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "purchase_price"})
	query = utils.ApplyPagination(query, params)

	var purchases []models.Purchase
	if err := query.Preload("File").Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	return purchases, total, nil
}
