package domain

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderCancelled      = errors.New("cannot confirm a cancelled order")
	ErrIdempotencyConflict = errors.New("idempotency key reused with different request")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCurrency     = errors.New("unsupported currency")
	ErrInvalidRate         = errors.New("rate must be between 0 and 1")
	ErrInvalidCap          = errors.New("cap must be non-negative")
	ErrUserIDRequired      = errors.New("user id required")
	ErrMerchantIDRequired  = errors.New("merchant id required")
)
