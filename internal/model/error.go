package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidField       = "INVALID_FIELD"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeRouteNotFound      = "NOT_FOUND"
	ErrCodePersistenceFailure = "PERSISTENCE_FAILURE"
)

// DomainError is a business-rule failure whose message is safe to show to clients.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is works for
// both the sentinels below and per-field errors built with NewFieldError.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewFieldError builds a MISSING_FIELD or INVALID_FIELD error naming the field.
func NewFieldError(code, field, reason string) *DomainError {
	return NewDomainError(code, fmt.Sprintf("%s %s", field, reason))
}

// Common domain errors
var (
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidPayment     = NewDomainError(ErrCodeInvalidPayment, "Payment method must be creditCard or paypal")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be at least one")
	ErrInvalidPrice       = NewDomainError(ErrCodeInvalidPrice, "Price must not be negative")
	ErrDuplicateEmail     = NewDomainError(ErrCodeDuplicateEmail, "Email already registered")
	ErrUserNotFound       = NewDomainError(ErrCodeUserNotFound, "User not found")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrNoCredential       = NewDomainError(ErrCodeUnauthorised, "No token provided")
	ErrInvalidCredential  = NewDomainError(ErrCodeForbidden, "Invalid token")
	ErrPersistence        = NewDomainError(ErrCodePersistenceFailure, "Failed to save order")
)
