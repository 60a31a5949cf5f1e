// internal/handlers/rating.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type RatingHandler struct {
	ratingService *services.RatingService
}

func NewRatingHandler(ratingService *services.RatingService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
	}
}

// Range and review length are checked by RatingService.
type submitRatingRequest struct {
	Rating int     `json:"rating"`
	Review *string `json:"review,omitempty"`
}

// POST /files/:id/ratings
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req submitRatingRequest
	if !bindJSON(c, &req) {
		return
	}

	snapshot, err := h.ratingService.SubmitRating(c.Request.Context(), fileID, userID, req.Rating, req.Review)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(utils.GetLangFromContext(c), i18n.KeyRatingSubmitted),
		"file_id":        snapshot.FileID,
		"average_rating": snapshot.AverageRating.StringFixed(2),
		"total_ratings":  snapshot.TotalRatings,
		"total_reviews":  snapshot.TotalReviews,
	})
}

// GET /files/:id/reviews
func (h *RatingHandler) ListReviews(c *gin.Context) {
	fileID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, total, err := h.ratingService.ListReviews(c.Request.Context(), fileID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(newReviewViews(reviews), total, params))
}
