// internal/services/errors.go
package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrInvalidFile         = errors.New("file is not available")
	ErrSelfPurchase        = errors.New("cannot purchase own file")
	ErrAlreadyPurchased    = errors.New("file already purchased")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrSelfRating          = errors.New("cannot rate own file")
	ErrInvalidReviewLength = errors.New("review must be between 10 and 1000 characters")
	ErrPurchaseRequired    = errors.New("purchase required to rate")
	ErrForbidden           = errors.New("access denied")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrAlreadyRefunded     = errors.New("purchase already refunded")
	ErrInvalidAmount       = errors.New("amount must not be zero")
	ErrInvalidPrice        = errors.New("final price must be between 0 and price")
	ErrReviewNotFound      = errors.New("review not found")
	ErrObjectNotFound      = errors.New("stored object not found")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")
	ErrAccountInactive     = errors.New("account is not active")
)

// ErrorKind classifies service errors for logging and transport mapping.
type ErrorKind int

const (
	KindInfrastructure ErrorKind = iota
	KindValidation
	KindBusinessRule
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindNotFound:
		return "not_found"
	default:
		return "infrastructure"
	}
}

var (
	validationErrors = []error{
		ErrInvalidRating, ErrInvalidReviewLength, ErrInvalidAmount, ErrInvalidPrice,
		ErrInvalidStatus,
	}
	notFoundErrors = []error{
		ErrFileNotFound, ErrAccountNotFound, ErrPurchaseNotFound, ErrReviewNotFound,
		ErrObjectNotFound,
	}
	businessRuleErrors = []error{
		ErrInvalidFile, ErrSelfPurchase, ErrAlreadyPurchased, ErrInsufficientFunds,
		ErrSelfRating, ErrPurchaseRequired, ErrForbidden, ErrAlreadyRefunded,
		ErrInvalidCredentials, ErrUserExists, ErrAccountInactive,
	}
)

// Kind reports the category of err. Anything unrecognized is infrastructure.
func Kind(err error) ErrorKind {
	switch {
	case matchesAny(err, validationErrors):
		return KindValidation
	case matchesAny(err, notFoundErrors):
		return KindNotFound
	case matchesAny(err, businessRuleErrors):
		return KindBusinessRule
	default:
		return KindInfrastructure
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// isUniqueViolation detects a unique-constraint failure from any supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
