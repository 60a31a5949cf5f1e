// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, authPayload(c, i18n.KeyAuthRegisterSuccess, authResponse))
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(c, i18n.KeyAuthLoginSuccess, authResponse))
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(c, "", authResponse))
}

func authPayload(c *gin.Context, messageKey string, resp *services.AuthResponse) gin.H {
	payload := gin.H{
		"user":          resp.User,
		"token":         resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
	if messageKey != "" {
		payload["message"] = i18n.T(utils.GetLangFromContext(c), messageKey)
	}
	return payload
}
