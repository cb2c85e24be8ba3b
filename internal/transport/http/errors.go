package http

import (
	"errors"
	"net/http"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeValidation          = "validation"
	codeOrderNotFound       = "order_not_found"
	codeOrderCancelled      = "order_cancelled"
	codeIdempotencyConflict = "idempotency_conflict"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

// writeDomainError maps the service error taxonomy onto HTTP statuses:
// not-found 404, illegal transitions and key reuse 409, validation 400,
// everything else 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, r, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderCancelled):
		writeError(w, r, http.StatusConflict, codeOrderCancelled, err.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, r, http.StatusConflict, codeIdempotencyConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidCap),
		errors.Is(err, domain.ErrUserIDRequired),
		errors.Is(err, domain.ErrMerchantIDRequired):
		writeError(w, r, http.StatusBadRequest, codeValidation, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
