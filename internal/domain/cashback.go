package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashbackRule configures the credit earned at a merchant: rate is a fraction
// in [0,1], cap (optional) bounds the credited amount.
type CashbackRule struct {
	MerchantID string
	Rate       decimal.Decimal
	Cap        *decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultCashbackRate applies when a merchant has no rule configured.
var DefaultCashbackRate = decimal.NewFromFloat(0.05)

// ComputeCashback returns rate x amount rounded to 2 decimal places (half up,
// away from zero), clamped to the rule's cap when one is set. A nil rule uses
// DefaultCashbackRate with no cap.
func ComputeCashback(amount decimal.Decimal, rule *CashbackRule) decimal.Decimal {
	rate := DefaultCashbackRate
	var cap *decimal.Decimal
	if rule != nil {
		rate = rule.Rate
		cap = rule.Cap
	}

	cashback := amount.Mul(rate)
	if cap != nil && cashback.GreaterThan(*cap) {
		cashback = *cap
	}
	return cashback.Round(2)
}
