// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/filemart/internal/i18n"
	"github.com/javajoker/filemart/internal/services"
	"github.com/javajoker/filemart/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

var errorMappings = []errorMapping{
	// Validation
	{services.ErrInvalidRating, http.StatusBadRequest, "INVALID_RATING", i18n.KeyRatingInvalid},
	{services.ErrInvalidReviewLength, http.StatusBadRequest, "INVALID_REVIEW_LENGTH", i18n.KeyReviewInvalidLength},
	{services.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT", i18n.KeyInvalidAmount},
	{services.ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE", i18n.KeyFileInvalidPrice},
	{services.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS", i18n.KeyInvalidStatus},

	// Business rules
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials},
	{services.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS", i18n.KeyPurchaseInsufficientFunds},
	{services.ErrSelfPurchase, http.StatusForbidden, "SELF_PURCHASE", i18n.KeyPurchaseSelf},
	{services.ErrSelfRating, http.StatusForbidden, "SELF_RATING", i18n.KeyRatingSelf},
	{services.ErrPurchaseRequired, http.StatusForbidden, "PURCHASE_REQUIRED", i18n.KeyRatingPurchaseRequired},
	{services.ErrForbidden, http.StatusForbidden, "FORBIDDEN", i18n.KeyFileAccessDenied},
	{services.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE", i18n.KeyAuthAccountSuspended},
	{services.ErrInvalidFile, http.StatusConflict, "FILE_UNAVAILABLE", i18n.KeyFileUnavailable},
	{services.ErrAlreadyPurchased, http.StatusConflict, "ALREADY_PURCHASED", i18n.KeyPurchaseAlreadyPurchased},
	{services.ErrAlreadyRefunded, http.StatusConflict, "ALREADY_REFUNDED", i18n.KeyPurchaseAlreadyRefunded},
	{services.ErrUserExists, http.StatusConflict, "USER_EXISTS", i18n.KeyAuthUserExists},

	// Not found
	{services.ErrFileNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyFileNotFound},
	{services.ErrAccountNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyAccountNotFound},
	{services.ErrPurchaseNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyPurchaseNotFound},
	{services.ErrReviewNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyReviewNotFound},
	{services.ErrObjectNotFound, http.StatusNotFound, "OBJECT_NOT_FOUND", i18n.KeyFileObjectMissing},
}

// respondError writes the envelope for a service error. Anything the services
// did not classify is reported as an internal error and logged.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.LocalizedError(c, m.status, m.code, m.key)
			return
		}
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"kind":   services.Kind(err).String(),
	}).Error("Unhandled service error")
	utils.InternalErrorResponse(c)
}
