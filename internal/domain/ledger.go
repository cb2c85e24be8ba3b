package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerEntryType string

const (
	LedgerEntryCredit LedgerEntryType = "CREDIT"
	LedgerEntryDebit  LedgerEntryType = "DEBIT"
)

// LedgerEntry is an immutable, append-only record of a credit or debit against
// a user's balance. The storage layer enforces at most one entry per
// (order, entry type), which is what makes the cashback credit at-most-once.
type LedgerEntry struct {
	ID        string
	UserID    string
	OrderID   string
	EntryType LedgerEntryType
	Amount    decimal.Decimal
	Currency  string
	CreatedAt time.Time
}

// CurrencyBalance is a user's net ledger position in one currency.
type CurrencyBalance struct {
	Currency string
	Balance  decimal.Decimal
}
