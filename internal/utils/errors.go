package utils

import (
    "errors"
    "net/http"
)

// ErrorKind groups application errors by how they surface to callers.
type ErrorKind int

const (
    KindAuthentication ErrorKind = iota + 1
    KindAuthorization
    KindValidation
    KindNotFound
    KindInvalidTransition
)

// AppError is a caller-facing failure with a stable code and message.
type AppError struct {
    Kind    ErrorKind
    Code    string
    Message string
}

func (e *AppError) Error() string {
    return e.Code + ": " + e.Message
}

// Common application errors used across services.
var (
    ErrAuthRequired       = &AppError{KindAuthentication, "AUTHENTICATION_REQUIRED", "Authentication required"}
    ErrInvalidCredentials = &AppError{KindAuthentication, "INVALID_CREDENTIALS", "Invalid credentials"}
    ErrTokenMissing       = &AppError{KindAuthentication, "TOKEN_MISSING", "Token is missing"}
    ErrTokenExpired       = &AppError{KindAuthentication, "TOKEN_EXPIRED", "Token has expired"}
    ErrTokenInvalid       = &AppError{KindAuthentication, "INVALID_TOKEN", "Invalid token"}

    ErrForbidden = &AppError{KindAuthorization, "FORBIDDEN", "Insufficient permissions"}

    ErrInvalidRequest       = &AppError{KindValidation, "INVALID_REQUEST", "Invalid request body"}
    ErrMissingPaymentFields = &AppError{KindValidation, "MISSING_FIELD", "Missing required payment information"}
    ErrInvalidCardNumber    = &AppError{KindValidation, "INVALID_CARD_NUMBER", "Invalid card number"}
    ErrInvalidCVV           = &AppError{KindValidation, "INVALID_CVV", "Invalid CVV"}

    ErrPaymentNotFound = &AppError{KindNotFound, "PAYMENT_NOT_FOUND", "Payment not found"}

    ErrInvalidTransition = &AppError{KindInvalidTransition, "INVALID_TRANSITION", "Payment status does not allow this operation"}
    ErrNotReversible     = &AppError{KindInvalidTransition, "INVALID_TRANSITION", "Only approved payments can be reversed"}
    ErrNotCancellable    = &AppError{KindInvalidTransition, "INVALID_TRANSITION", "Only approved or pending payments can be cancelled"}
)

// KindOf returns the kind of err, or 0 when err is not an AppError.
func KindOf(err error) ErrorKind {
    var appErr *AppError
    if errors.As(err, &appErr) {
        return appErr.Kind
    }
    return 0
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
    switch KindOf(err) {
    case KindAuthentication:
        return http.StatusUnauthorized
    case KindAuthorization:
        return http.StatusForbidden
    case KindValidation, KindInvalidTransition:
        return http.StatusBadRequest
    case KindNotFound:
        return http.StatusNotFound
    default:
        return http.StatusInternalServerError
    }
}
