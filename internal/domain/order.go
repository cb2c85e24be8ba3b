package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is a purchase that earns a cashback credit once confirmed.
// Transitions are monotone: CREATED -> CONFIRMED; CANCELLED is terminal.
type Order struct {
	ID         string
	UserID     string
	MerchantID string
	Amount     decimal.Decimal
	Currency   string
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SupportedCurrencies is the fixed set accepted on order creation.
var SupportedCurrencies = map[string]bool{
	"SGD": true,
	"USD": true,
	"CNY": true,
}
