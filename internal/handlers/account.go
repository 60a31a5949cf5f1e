// internal/handlers/account.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GET /account/me
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.accountService.GetAccount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// GET /account/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.accountService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, balance)
}

// GET /account/ledger
func (h *AccountHandler) GetLedger(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.accountService.GetLedger(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(entries, total, params))
}

// GET /account/purchases
func (h *AccountHandler) GetPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	purchases, total, err := h.accountService.GetPurchases(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(purchases, total, params))
}
