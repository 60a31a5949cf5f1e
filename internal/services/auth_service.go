// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/models"
	"github.com/javajoker/filemart/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates a member account with a zero balance.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.User{}).
		Where("email = ? OR username = ?", req.Email, req.Username).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing > 0 {
		return nil, ErrUserExists
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		UserType: models.UserTypeMember,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("User registered")
	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrAccountInactive
	}

	now := time.Now()
	if err := db.Model(&user).UpdateColumn("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.Status != models.UserStatusActive {
		return nil, ErrAccountInactive
	}

	return s.issueTokens(&user)
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, string(user.UserType), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
