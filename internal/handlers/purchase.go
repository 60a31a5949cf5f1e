// internal/handlers/purchase.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// POST /files/:id/purchase
func (h *PurchaseHandler) PurchaseFile(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.purchaseService.ExecutePurchase(c.Request.Context(), fileID, buyerID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":               i18n.T(utils.GetLangFromContext(c), i18n.KeyPurchaseSuccess),
		"purchase_id":           result.PurchaseID,
		"transaction_reference": result.TransactionReference,
		"purchase_price":        result.PurchasePrice,
		"new_balance":           result.NewBalance,
	})
}
