// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Ledger      LedgerConfig
	I18n        I18nConfig

	// AdminPassword is used once, when no administrator exists yet.
	AdminPassword string
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

// RateLimitConfig sets the per-client request budgets.
type RateLimitConfig struct {
	GeneralPerSecond int
	GeneralBurst     int
	AuthPerMinute    int
	LedgerPerMinute  int
	LedgerBurst      int
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	PresignTTL      int // in minutes
	LocalBaseURL    string
}

// LedgerConfig holds the marketplace money rules.
type LedgerConfig struct {
	CommissionRate        decimal.Decimal
	RequirePurchaseToRate bool
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	commissionRate, err := getEnvAsDecimal("LEDGER_COMMISSION_RATE", "0.10")
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:    getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:    getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),
			RateLimit: RateLimitConfig{
				GeneralPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
				GeneralBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
				AuthPerMinute:    getEnvAsInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
				LedgerPerMinute:  getEnvAsInt("RATE_LIMIT_LEDGER_PER_MINUTE", 30),
				LedgerBurst:      getEnvAsInt("RATE_LIMIT_LEDGER_BURST", 10),
			},
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "filemart"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "filemart.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "filemart-files"),
			PresignTTL:      getEnvAsInt("AWS_PRESIGN_TTL_MINUTES", 15),
			LocalBaseURL:    getEnv("LOCAL_FILES_BASE_URL", "http://localhost:8080/files"),
		},
		Ledger: LedgerConfig{
			CommissionRate:        commissionRate,
			RequirePurchaseToRate: getEnvAsBool("LEDGER_REQUIRE_PURCHASE_TO_RATE", false),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123!@#"),
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.AdminPassword == "admin123!@#" && c.Environment == "production" {
		return fmt.Errorf("default admin password must be changed in production")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Ledger.CommissionRate.IsNegative() || c.Ledger.CommissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission rate must be in [0, 1), got %s", c.Ledger.CommissionRate)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key, defaultValue string) []string {
	var values []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnv(key, defaultValue)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
