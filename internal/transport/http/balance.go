package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/clock"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// BalanceReader is the minimal interface needed to read a cashback balance.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID string) ([]domain.CurrencyBalance, error)
}

// HandleGetBalance returns an HTTP handler for reading a user's per-currency
// cashback balances.
func HandleGetBalance(svc BalanceReader, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		userID, ok := parseBalancePath(r.URL.Path)
		if !ok {
			writeError(w, r, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		balances, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		resp := balanceResponse{
			UserID:   userID,
			Balances: make([]currencyBalance, 0, len(balances)),
			AsOf:     clk.Now(),
		}
		for _, b := range balances {
			resp.Balances = append(resp.Balances, currencyBalance{
				Currency: b.Currency,
				Balance:  b.Balance,
			})
		}

		writeData(w, r, http.StatusOK, resp)
	}
}

func parseBalancePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "users" || parts[2] != "cashback-balance" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type currencyBalance struct {
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type balanceResponse struct {
	UserID   string            `json:"user_id"`
	Balances []currencyBalance `json:"balances"`
	AsOf     time.Time         `json:"as_of"`
}
