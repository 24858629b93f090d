package domain

import "fmt"

// ValidationError reports bad input shape or range. User-correctable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Key)
}

// ConflictError reports a state that forbids the requested operation:
// an illegal status transition, insufficient stock, an exhausted coupon,
// a return that was already processed.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// AuthorizationError reports a principal acting on an entity it has no
// rights over, or a gateway callback whose signature does not verify.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ExternalError wraps a failure of an external collaborator (payment
// gateway, notification transport). Retryable by the caller with the
// same idempotency key.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// InvariantViolation reports a should-never-happen condition. It is
// logged where detected and surfaced as a generic failure, never
// silently swallowed.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string { return e.Reason }

// Named failures. Callers branch on these with errors.Is; the dynamic
// type carries the category for the HTTP layer.
var (
	// Pricing
	ErrInvalidQuantity = &ValidationError{Reason: "quantity must be positive"}
	ErrInvalidProduct  = &ValidationError{Reason: "product has no sale price"}
	ErrNoPricingTier   = &ValidationError{Reason: "product has no rental pricing tier"}
	ErrInvalidWindow   = &ValidationError{Reason: "rental window end must not precede start"}

	// Cart
	ErrEmptyCart      = &ValidationError{Reason: "quotation has no lines"}
	ErrProductDeleted = &ConflictError{Reason: "product is no longer offered"}
	ErrMixedVendors   = &ValidationError{Reason: "cart lines must belong to a single vendor"}

	// Coupons, in validation order
	ErrCouponInactive     = &ConflictError{Reason: "coupon is not active"}
	ErrCouponNotYetValid  = &ConflictError{Reason: "coupon is not yet valid"}
	ErrCouponExpired      = &ConflictError{Reason: "coupon has expired"}
	ErrCouponUsageLimit   = &ConflictError{Reason: "coupon usage limit exceeded"}
	ErrCouponPerUserLimit = &ConflictError{Reason: "coupon already used the maximum number of times by this user"}
	ErrCouponBelowMinimum = &ConflictError{Reason: "order amount is below the coupon minimum"}

	// Orders and stock
	ErrInvalidTransition      = &ConflictError{Reason: "order status transition not permitted"}
	ErrReturnAlreadyProcessed = &ConflictError{Reason: "return already processed for this order"}
	ErrInsufficientStock      = &ConflictError{Reason: "insufficient stock"}

	// Payments
	ErrInvalidSignature = &AuthorizationError{Reason: "gateway signature verification failed"}

	// ErrTxConflict marks a database-level conflict between concurrent
	// transactions. Safe to retry a bounded number of times.
	ErrTxConflict = &ConflictError{Reason: "concurrent modification, retry"}
)
