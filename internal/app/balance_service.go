package app

import (
	"context"
	"sort"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerReader interface {
	ListEntriesByUser(ctx context.Context, userID string) ([]domain.LedgerEntry, error)
}

// BalanceService derives a user's net cashback balance from the append-only
// ledger. It reads outside any transaction; the ledger only ever grows.
type BalanceService struct {
	ledger LedgerReader
}

func NewBalanceService(ledger LedgerReader) *BalanceService {
	return &BalanceService{ledger: ledger}
}

// GetBalance sums the user's ledger entries signed by type (+CREDIT, -DEBIT)
// and returns one balance per currency, sorted by currency code.
func (s *BalanceService) GetBalance(ctx context.Context, userID string) ([]domain.CurrencyBalance, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	entries, err := s.ledger.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		amount := e.Amount
		if e.EntryType == domain.LedgerEntryDebit {
			amount = amount.Neg()
		}
		totals[e.Currency] = totals[e.Currency].Add(amount)
	}

	balances := make([]domain.CurrencyBalance, 0, len(totals))
	for currency, balance := range totals {
		balances = append(balances, domain.CurrencyBalance{
			Currency: currency,
			Balance:  balance,
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Currency < balances[j].Currency
	})
	return balances, nil
}
