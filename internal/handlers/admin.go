// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type AdminHandler struct {
	adminService  *services.AdminService
	ledgerService *services.LedgerService
}

func NewAdminHandler(adminService *services.AdminService, ledgerService *services.LedgerService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		ledgerService: ledgerService,
	}
}

type reviewStatusRequest struct {
	Status models.ReviewVisibility `json:"status" validate:"required,oneof=visible hidden"`
}

type userStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended banned"`
	Reason string            `json:"reason" validate:"max=500"`
}

type refundRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type adjustBalanceRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /admin/purchases
func (h *AdminHandler) GetPurchases(c *gin.Context) {
	filter := services.AdminPurchaseFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	// Parse filters
	if status := c.Query("status"); status != "" {
		pStatus := models.PaymentStatus(status)
		filter.Status = &pStatus
	}
	for name, target := range map[string]**uuid.UUID{
		"buyer_id":  &filter.BuyerID,
		"seller_id": &filter.SellerID,
		"file_id":   &filter.FileID,
	} {
		if raw := c.Query(name); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
				return
			}
			*target = &id
		}
	}

	purchases, total, err := h.adminService.GetPurchases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(purchases, total, filter.PaginationParams))
}

// PUT /admin/files/:id/status
func (h *AdminHandler) UpdateFileStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.FileStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := h.adminService.UpdateFileStatus(c.Request.Context(), fileID, adminID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"file": newFileView(file, true),
	})
}

// PUT /admin/reviews/:id/status
func (h *AdminHandler) UpdateReviewStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	reviewID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req reviewStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.adminService.UpdateReviewStatus(c.Request.Context(), reviewID, adminID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"review": review,
	})
}

// PUT /admin/users/:id/status
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req userStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.adminService.UpdateUserStatus(c.Request.Context(), userID, adminID, req.Status, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user_id": userID,
		"status":  req.Status,
	})
}

// POST /admin/purchases/:id/refund
func (h *AdminHandler) RefundPurchase(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	purchaseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req refundRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ledgerService.RefundPurchase(c.Request.Context(), purchaseID, adminID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyRefundSuccess),
		"refund":  result,
	})
}

// POST /admin/accounts/:id/adjust
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	accountID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req adjustBalanceRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.ledgerService.AdjustBalance(c.Request.Context(), accountID, adminID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"entry": entry,
	})
}
