// internal/handlers/context.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

// currentUserID returns the authenticated caller. It writes a 401 when there is none.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
		return uuid.Nil, false
	}
	return userID, true
}

// currentActor returns nil for anonymous callers.
func currentActor(c *gin.Context) *services.Actor {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}

	userType, _ := utils.GetUserTypeFromContext(c)
	return &services.Actor{
		ID:      userID,
		IsAdmin: userType == string(models.UserTypeAdmin),
	}
}

// uuidParam parses a path parameter. It writes a 400 when the value is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds and validates the request body, writing a 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
