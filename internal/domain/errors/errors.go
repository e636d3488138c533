package errors

import (
	"errors"
	"fmt"
	"net/http"

	"echoforge.backend/internal/domain/entities"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyConfirmed = errors.New("payment already confirmed")
	ErrPaymentExpired   = errors.New("payment expired")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfigured    = errors.New("missing configuration")
	ErrDetectionFailed  = errors.New("detection backend unavailable")
)

// InsufficientBalanceError carries the required and available amounts in
// micro-units; Error formats them in human-readable token units.
type InsufficientBalanceError struct {
	RequiredMicro  int64
	AvailableMicro int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient token balance: required %s, available %s",
		entities.FormatTokens(e.RequiredMicro), entities.FormatTokens(e.AvailableMicro))
}

// AppError represents an application error with HTTP status and a
// machine-readable code
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "AUTHENTICATION_ERROR", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "AUTHORIZATION_ERROR", message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, ErrConflict)
}

func InvalidSignature(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "INVALID_SIGNATURE", message, ErrInvalidSignature)
}

// ConfigError signals missing deployment configuration (wallet address,
// provider secret). Surfaced as 503 so callers know it is not their fault.
func ConfigError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, "CONFIGURATION_ERROR", message, ErrNotConfigured)
}

// InsufficientBalance wraps a typed balance error into a 402 response.
func InsufficientBalance(requiredMicro, availableMicro int64) *AppError {
	cause := &InsufficientBalanceError{
		RequiredMicro:  requiredMicro,
		AvailableMicro: availableMicro,
	}
	return NewAppError(http.StatusPaymentRequired, "INSUFFICIENT_BALANCE", cause.Error(), cause)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", err)
}
