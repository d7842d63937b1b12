package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound           ErrorCode = "account_not_found"
	TransferNotFound          ErrorCode = "transfer_not_found"
	InsufficientFunds         ErrorCode = "insufficient_funds"
	InvalidRequest            ErrorCode = "invalid_request"
	InvalidAmount             ErrorCode = "invalid_amount"
	LockUnavailable           ErrorCode = "lock_unavailable"
	InfrastructureUnavailable ErrorCode = "infrastructure_unavailable"
	CommitFailed              ErrorCode = "commit_failed"
	DuplicateAccount          ErrorCode = "duplicate_account"
	InternalError             ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps an error code to the response status used by the handlers.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound, TransferNotFound:
		return http.StatusNotFound
	case InsufficientFunds, InvalidRequest, InvalidAmount:
		return http.StatusUnprocessableEntity
	case DuplicateAccount:
		return http.StatusConflict
	case LockUnavailable:
		return http.StatusConflict
	case InfrastructureUnavailable, CommitFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code extracts the error code from err, or InternalError for anything that
// is not an *AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return InternalError
}

// Retryable reports whether err is a transient infrastructure failure that a
// retry policy may reasonably attempt again. Business-rule rejections and
// not-found errors are never retryable.
func Retryable(err error) bool {
	switch Code(err) {
	case InfrastructureUnavailable, CommitFailed, LockUnavailable, InternalError:
		return true
	default:
		return false
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound   = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds = NewAppError(InsufficientFunds, "insufficient funds")
	ErrInvalidAmount     = NewAppError(InvalidAmount, "amount must be positive")
	ErrSameAccount       = NewAppError(InvalidRequest, "source and destination accounts must differ")
	ErrInvalidAccount    = NewAppError(InvalidRequest, "account number must be positive")
	ErrLockUnavailable   = NewAppError(LockUnavailable, "could not acquire account lock")
	ErrDuplicateAccount  = NewAppError(DuplicateAccount, "account already exists")
)
