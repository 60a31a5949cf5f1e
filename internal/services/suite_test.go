// internal/services/suite_test.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/filemart/internal/config"
	"github.com/javajoker/filemart/internal/database"
	"github.com/javajoker/filemart/internal/models"
)

// storeSuite gives every test a fresh in-memory database with the real schema.
type storeSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	cfg      *config.Config
	activity *ActivityRecorder
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		AWS: config.AWSConfig{
			PresignTTL:   15,
			LocalBaseURL: "http://files.test",
		},
		Ledger: config.LedgerConfig{
			CommissionRate: decimal.RequireFromString("0.10"),
		},
	}
}

func openTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *storeSuite) SetupTest() {
	db, err := openTestDB()
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.db = db
	s.cfg = testConfig()
	s.activity = NewActivityRecorder(db)
}

func (s *storeSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *storeSuite) createAccount(username string, balance int64) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		UserType:     models.UserTypeMember,
		Status:       models.UserStatusActive,
		Balance:      balance,
	}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *storeSuite) createAdmin(username string) *models.User {
	user := s.createAccount(username, 0)
	s.Require().NoError(s.db.Model(user).Update("user_type", models.UserTypeAdmin).Error)
	user.UserType = models.UserTypeAdmin
	return user
}

type fileOption func(*models.File)

func pending() fileOption {
	return func(f *models.File) { f.ReviewStatus = models.FileReviewPending }
}

func inactive() fileOption {
	return func(f *models.File) { f.IsActive = false }
}

func private() fileOption {
	return func(f *models.File) { f.IsPublic = false }
}

func discounted(finalPrice int64) fileOption {
	return func(f *models.File) { f.FinalPrice = finalPrice }
}

// createFile makes an approved, active, public file unless options say otherwise.
func (s *storeSuite) createFile(owner *models.User, price int64, opts ...fileOption) *models.File {
	file := &models.File{
		OwnerID:      owner.ID,
		Title:        "file-" + uuid.NewString()[:8],
		StorageKey:   "files/" + uuid.NewString() + ".zip",
		PreviewKey:   "previews/" + uuid.NewString() + ".png",
		Price:        price,
		FinalPrice:   price,
		ReviewStatus: models.FileReviewApproved,
		IsActive:     true,
		IsPublic:     true,
	}
	for _, opt := range opts {
		opt(file)
	}
	s.Require().NoError(s.db.Create(file).Error)
	return file
}

func (s *storeSuite) account(id uuid.UUID) *models.User {
	var user models.User
	s.Require().NoError(s.db.First(&user, "id = ?", id).Error)
	return &user
}

func (s *storeSuite) file(id uuid.UUID) *models.File {
	var file models.File
	s.Require().NoError(s.db.First(&file, "id = ?", id).Error)
	return &file
}

func (s *storeSuite) count(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	q := s.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	s.Require().NoError(q.Count(&n).Error)
	return n
}
