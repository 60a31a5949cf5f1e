// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/javajoker/filemart/internal/i18n"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// LocalizedError writes an error envelope whose message comes from the i18n catalog.
func LocalizedError(c *gin.Context, statusCode int, code, key string) {
	ErrorResponse(c, statusCode, code, i18n.T(GetLangFromContext(c), key), nil)
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func InternalErrorResponse(c *gin.Context) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyInternalError)
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return "en"
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, exists := c.Get("user_id"); exists {
		if userIDStr, ok := userID.(string); ok {
			return userIDStr, true
		}
	}
	return "", false
}

func GetUserTypeFromContext(c *gin.Context) (string, bool) {
	if userType, exists := c.Get("user_type"); exists {
		if userTypeStr, ok := userType.(string); ok {
			return userTypeStr, true
		}
	}
	return "", false
}
