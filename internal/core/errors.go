// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrTokenInvalid = errors.New("token invalid")
)

// Storefront taxonomy. An unknown coupon is distinct from no coupon, and an
// entitlement ledger failure after a confirmed payment is never soft.
var (
	ErrInvalidCoupon       = errors.New("invalid coupon")
	ErrInvalidDiscount     = errors.New("invalid discount")
	ErrEmptyCart           = errors.New("empty cart")
	ErrPaymentInitiation   = errors.New("payment initiation failed")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrNotEntitled         = errors.New("not entitled")
	ErrEntitlementExpired  = errors.New("entitlement expired")
	ErrAlreadyDownloaded   = errors.New("already downloaded")

	// ErrEntitlementPersistence marks paid-but-unfulfilled state: money has
	// moved and the ledger write failed. Must surface loudly, never as a
	// flash message.
	ErrEntitlementPersistence = errors.New("entitlement persistence failed")
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		http.StatusConflict,
		"DUPLICATE",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token has been revoked", http.StatusUnauthorized, "TOKEN_REVOKED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "token is invalid", http.StatusUnauthorized, "TOKEN_INVALID")
}

func InvalidCouponError(code string) *AppError {
	return NewAppError(
		ErrInvalidCoupon,
		fmt.Sprintf("coupon code %q is not valid", code),
		http.StatusUnprocessableEntity,
		"INVALID_COUPON",
	)
}

func EmptyCartError() *AppError {
	return NewAppError(ErrEmptyCart, "cart is empty", http.StatusUnprocessableEntity, "EMPTY_CART")
}

func PaymentInitiationError() *AppError {
	return NewAppError(
		ErrPaymentInitiation,
		"payment could not be started, please try again",
		http.StatusBadGateway,
		"PAYMENT_INITIATION_FAILED",
	)
}

func PaymentNotConfirmedError() *AppError {
	return NewAppError(
		ErrPaymentNotConfirmed,
		"payment was not confirmed, you have not been charged twice",
		http.StatusPaymentRequired,
		"PAYMENT_NOT_CONFIRMED",
	)
}

func NotEntitledError() *AppError {
	return NewAppError(
		ErrNotEntitled,
		"no entitlement for this file",
		http.StatusForbidden,
		"NOT_ENTITLED",
	)
}

func EntitlementExpiredError() *AppError {
	return NewAppError(
		ErrEntitlementExpired,
		"download link has expired",
		http.StatusGone,
		"ENTITLEMENT_EXPIRED",
	)
}

func AlreadyDownloadedError() *AppError {
	return NewAppError(
		ErrAlreadyDownloaded,
		"file has already been downloaded",
		http.StatusConflict,
		"ALREADY_DOWNLOADED",
	)
}

func EntitlementPersistenceError(confirmationID string) *AppError {
	return NewAppError(
		ErrEntitlementPersistence,
		fmt.Sprintf(
			"payment %s succeeded but fulfillment failed, contact support",
			confirmationID,
		),
		http.StatusInternalServerError,
		"ENTITLEMENT_PERSISTENCE_FAILED",
	)
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "validation failed"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, formatFieldError(fieldErr))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
