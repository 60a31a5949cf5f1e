// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyValidationInvalid = "validation.invalid"
	KeyInvalidStatus     = "validation.invalid_status"
	KeyInternalError     = "error.internal"
	KeyRateLimited       = "rate_limit.exceeded"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountSuspended   = "auth.account_suspended"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAdminAccessDenied      = "admin.access_denied"

	// Files
	KeyFileNotFound      = "file.not_found"
	KeyFileUnavailable   = "file.unavailable"
	KeyFileAccessDenied  = "file.access_denied"
	KeyFileInvalidPrice  = "file.invalid_price"
	KeyFileObjectMissing = "file.object_missing"

	// Purchases
	KeyPurchaseSelf              = "purchase.self_purchase"
	KeyPurchaseAlreadyPurchased  = "purchase.already_purchased"
	KeyPurchaseInsufficientFunds = "purchase.insufficient_funds"
	KeyPurchaseNotFound          = "purchase.not_found"
	KeyPurchaseAlreadyRefunded   = "purchase.already_refunded"
	KeyPurchaseSuccess           = "purchase.success"
	KeyRefundSuccess             = "purchase.refund_success"

	// Ratings and reviews
	KeyRatingInvalid          = "rating.invalid_value"
	KeyRatingSelf             = "rating.self_rating"
	KeyRatingPurchaseRequired = "rating.purchase_required"
	KeyReviewInvalidLength    = "review.invalid_length"
	KeyReviewNotFound         = "review.not_found"
	KeyRatingSubmitted        = "rating.submitted"

	// Accounts
	KeyAccountNotFound = "account.not_found"
	KeyInvalidAmount   = "ledger.invalid_amount"
)
