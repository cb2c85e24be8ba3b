package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
)

// OrderConfirmer is the minimal interface needed to confirm an order.
type OrderConfirmer interface {
	Confirm(ctx context.Context, in app.ConfirmOrderInput) (app.ConfirmResult, error)
}

// HandleConfirmOrder returns an HTTP handler for confirming orders and
// crediting cashback. The Idempotency-Key header is optional; without it each
// call is evaluated independently, but the ledger still credits at most once.
func HandleConfirmOrder(svc OrderConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		orderID, ok := parseConfirmOrderPath(r.URL.Path)
		if !ok {
			writeError(w, r, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		res, err := svc.Confirm(r.Context(), app.ConfirmOrderInput{
			OrderID:        orderID,
			IdempotencyKey: r.Header.Get(idempotencyHeader),
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeData(w, r, http.StatusOK, res)
	}
}

func parseConfirmOrderPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "orders" || parts[2] != "confirm" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
