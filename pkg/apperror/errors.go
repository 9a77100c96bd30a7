package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (LEDGER) ----

func ErrInsufficientBalance() *AppError {
	return New("LEDGER_001", "Insufficient confirmed balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("LEDGER_002", "Invalid amount", http.StatusBadRequest)
}

func ErrAccountNotFound() *AppError {
	return New("LEDGER_003", "Token account not found", http.StatusNotFound)
}

// ---- Auction (AUCTION) ----

func ErrConversationExists() *AppError {
	return New("AUCTION_001", "A conversation already exists between these users", http.StatusConflict)
}

func ErrSelfConversation() *AppError {
	return New("AUCTION_002", "Cannot start a conversation with yourself", http.StatusBadRequest)
}

func ErrInvalidDailyLimit() *AppError {
	return New("AUCTION_003", "Daily intro limit must be between 1 and 9", http.StatusBadRequest)
}

func ErrNotParticipant() *AppError {
	return New("AUCTION_004", "Not a participant of this conversation", http.StatusForbidden)
}

func ErrConversationNotFound() *AppError {
	return New("AUCTION_005", "Conversation not found", http.StatusNotFound)
}

func ErrBidTooLow() *AppError {
	return New("AUCTION_006", "Bid does not rank among the recipient's winning slots", http.StatusUnprocessableEntity)
}

func ErrNotDelivered() *AppError {
	return New("AUCTION_007", "Conversation has not been delivered yet", http.StatusConflict)
}

func ErrConversationNotOpen() *AppError {
	return New("AUCTION_008", "Conversation is not open for replies", http.StatusConflict)
}

// ---- Integrity (INTEGRITY) ----

// ErrSignatureMismatch reports a record whose stored signature does not match its content.
func ErrSignatureMismatch(ref string) *AppError {
	return New("INTEGRITY_001", fmt.Sprintf("Record signature mismatch: %s", ref), http.StatusInternalServerError)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Operation not permitted", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrBridgeFailure(err error) *AppError {
	return Wrap("SYS_004", "On-chain bridge failure", http.StatusBadGateway, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LEDGER_002-style validation error.
func Validation(message string) *AppError {
	return New("LEDGER_002", message, http.StatusBadRequest)
}

// IsPolicy reports whether err is an expected, user-facing rejection.
func IsPolicy(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return strings.HasPrefix(appErr.Code, "LEDGER_") || strings.HasPrefix(appErr.Code, "AUCTION_")
}

// IsIntegrity reports whether err carries a signature verification failure.
func IsIntegrity(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && strings.HasPrefix(appErr.Code, "INTEGRITY_")
}
