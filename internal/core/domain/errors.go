package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies every failure surfaced to the views.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network_error"
	KindTimeout      ErrorKind = "timeout"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindRateLimited  ErrorKind = "rate_limited"
	KindServer       ErrorKind = "server_error"
	KindValidation   ErrorKind = "validation_error"
	KindConflict     ErrorKind = "conflict"
)

// Error is a classified failure. RetryAfter is only set for KindRateLimited.
// Status carries the upstream HTTP status when there was one.
type Error struct {
	Kind       ErrorKind
	Message    string
	RetryAfter time.Duration
	Status     int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets the bare kind sentinels (ErrNetwork, ErrTimeout, ...) match any
// error of the same kind. Named sentinels only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels.
var (
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrTimeout      = &Error{Kind: KindTimeout}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrRateLimited  = &Error{Kind: KindRateLimited}
	ErrServer       = &Error{Kind: KindServer}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
)

// Local constraint violations, raised before any network call.
var (
	ErrInvalidQuantity    = &Error{Kind: KindValidation, Message: "quantity must be a positive integer"}
	ErrStockExceeded      = &Error{Kind: KindValidation, Message: "requested quantity exceeds available stock"}
	ErrEmptyCart          = &Error{Kind: KindValidation, Message: "cart is empty"}
	ErrLineNotFound       = &Error{Kind: KindNotFound, Message: "product is not in the cart"}
	ErrInvalidTradeStatus = &Error{Kind: KindValidation, Message: "status must be one of pending, completed, cancelled"}
	ErrInvalidTransition  = &Error{Kind: KindValidation, Message: "invalid trade status transition"}
	ErrTradeNotFound      = &Error{Kind: KindNotFound, Message: "trade not found"}
	ErrExpenseNotFound    = &Error{Kind: KindNotFound, Message: "expense not found"}
	ErrInvalidAmount      = &Error{Kind: KindValidation, Message: "amount must be a positive number"}
	ErrInvalidExpenseDate = &Error{Kind: KindValidation, Message: "date must be formatted as YYYY-MM-DD"}
	ErrInvalidPeriod      = &Error{Kind: KindValidation, Message: "period must be one of daily, weekly, monthly, yearly"}
	ErrMutationInFlight   = &Error{Kind: KindConflict, Message: "another change to this cart line is in progress"}
	ErrInvalidCredentials = &Error{Kind: KindValidation, Message: "email and password are required"}
	ErrSessionExpired     = &Error{Kind: KindUnauthorized, Message: "session expired - please login again"}
	ErrSessionNotFound    = &Error{Kind: KindUnauthorized, Message: "session not found"}
)

// NewError builds a classified error.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// KindOf extracts the classification of err. Unclassified errors are server errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// RetryAfterOf returns the retry hint carried by a rate-limited error.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
