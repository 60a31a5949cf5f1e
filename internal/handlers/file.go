// internal/handlers/file.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type FileHandler struct {
	fileService        *services.FileService
	entitlementService *services.EntitlementService
	storageService     *services.StorageService
}

func NewFileHandler(fileService *services.FileService, entitlementService *services.EntitlementService, storageService *services.StorageService) *FileHandler {
	return &FileHandler{
		fileService:        fileService,
		entitlementService: entitlementService,
		storageService:     storageService,
	}
}

// POST /files
func (h *FileHandler) CreateFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateFileRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := h.fileService.CreateFile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"file": newFileView(file, true),
	})
}

// GET /files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	actor := currentActor(c)
	file, err := h.fileService.GetFile(c.Request.Context(), fileID, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	showRevenue := actor != nil && (actor.IsAdmin || actor.ID == file.OwnerID)
	utils.SuccessResponse(c, gin.H{
		"file": newFileView(file, showRevenue),
	})
}

// GET /files/:id/access
func (h *FileHandler) GetAccess(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	level, err := h.entitlementService.Resolve(c.Request.Context(), fileID, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"file_id": fileID,
		"level":   level,
	})
}

// GET /files/:id/preview
func (h *FileHandler) GetPreview(c *gin.Context) {
	h.deliver(c, services.AccessPreview)
}

// GET /files/:id/download
func (h *FileHandler) GetDownload(c *gin.Context) {
	h.deliver(c, services.AccessDownload)
}

func (h *FileHandler) deliver(c *gin.Context, required services.AccessLevel) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	file, _, err := h.entitlementService.CanAccess(c.Request.Context(), fileID, currentActor(c), required)
	if err != nil {
		respondError(c, err)
		return
	}

	delivery, err := h.storageService.DeliveryURLFor(file, required)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, delivery)
}

// PUT /files/:id/pricing
func (h *FileHandler) UpdatePricing(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePricingRequest
	if !bindJSON(c, &req) {
		return
	}

	file, err := h.fileService.UpdatePricing(c.Request.Context(), fileID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"file": newFileView(file, true),
	})
}
