package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type stubConfirmer struct {
	res app.ConfirmResult
	err error
	in  app.ConfirmOrderInput
}

func (s *stubConfirmer) Confirm(_ context.Context, in app.ConfirmOrderInput) (app.ConfirmResult, error) {
	s.in = in
	return s.res, s.err
}

func TestHandleConfirmOrder(t *testing.T) {
	t.Parallel()

	t.Run("confirms and wraps the result in an envelope", func(t *testing.T) {
		svc := &stubConfirmer{res: app.ConfirmResult{
			OrderID: "order-1",
			Status:  domain.OrderStatusConfirmed,
			Cashback: app.CashbackAmount{
				Amount:   decimal.RequireFromString("5.00"),
				Currency: "SGD",
			},
			LedgerEntryID: "ledger-1",
		}}
		handler := HandleConfirmOrder(svc)

		req := httptest.NewRequest(http.MethodPost, "/orders/order-1/confirm", nil)
		req.Header.Set(idempotencyHeader, "idem-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.in.OrderID != "order-1" || svc.in.IdempotencyKey != "idem-1" {
			t.Fatalf("unexpected input: %+v", svc.in)
		}

		var env struct {
			RequestID string          `json:"requestId"`
			Data      json.RawMessage `json:"data"`
			Error     *apiError       `json:"error"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.Error != nil {
			t.Fatalf("expected no error, got %+v", env.Error)
		}
		var data app.ConfirmResult
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.LedgerEntryID != "ledger-1" {
			t.Fatalf("unexpected data: %+v", data)
		}
	})

	t.Run("maps domain errors to statuses", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"not found", domain.ErrOrderNotFound, http.StatusNotFound, codeOrderNotFound},
			{"cancelled", domain.ErrOrderCancelled, http.StatusConflict, codeOrderCancelled},
			{"idempotency conflict", domain.ErrIdempotencyConflict, http.StatusConflict, codeIdempotencyConflict},
			{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, codeValidation},
			{"storage failure", context.DeadlineExceeded, http.StatusInternalServerError, codeInternalError},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler := HandleConfirmOrder(&stubConfirmer{err: tt.err})

				req := httptest.NewRequest(http.MethodPost, "/orders/order-1/confirm", nil)
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				if rec.Code != tt.wantStatus {
					t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
				}
				var env struct {
					Error *apiError `json:"error"`
				}
				if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
					t.Fatalf("decode envelope: %v", err)
				}
				if env.Error == nil || env.Error.Code != tt.wantCode {
					t.Fatalf("expected code %s, got %+v", tt.wantCode, env.Error)
				}
			})
		}
	})

	t.Run("rejects non-POST", func(t *testing.T) {
		handler := HandleConfirmOrder(&stubConfirmer{})

		req := httptest.NewRequest(http.MethodGet, "/orders/order-1/confirm", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("unknown path shape is a 404", func(t *testing.T) {
		handler := HandleConfirmOrder(&stubConfirmer{})

		req := httptest.NewRequest(http.MethodPost, "/orders/order-1/cancel", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}
