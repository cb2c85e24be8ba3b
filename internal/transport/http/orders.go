package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/shopspring/decimal"
)

const idempotencyHeader = "Idempotency-Key"

// OrderCreator is the minimal interface needed to create an order.
type OrderCreator interface {
	Create(ctx context.Context, in app.CreateOrderInput) (app.OrderResult, error)
}

// HandleCreateOrder returns an HTTP handler for creating orders.
func HandleCreateOrder(svc OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Create(r.Context(), app.CreateOrderInput{
			UserID:         req.UserID,
			MerchantID:     req.MerchantID,
			Amount:         req.Amount,
			Currency:       req.Currency,
			IdempotencyKey: r.Header.Get(idempotencyHeader),
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeData(w, r, http.StatusCreated, res)
	}
}

type createOrderRequest struct {
	UserID     string          `json:"userId"`
	MerchantID string          `json:"merchantId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}
