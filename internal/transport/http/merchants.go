package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// RuleUpserter is the minimal interface needed to upsert a cashback rule.
type RuleUpserter interface {
	UpsertRule(ctx context.Context, in app.UpsertRuleInput) (domain.CashbackRule, error)
}

// HandleUpsertRule returns an HTTP handler for upserting merchant cashback rules.
func HandleUpsertRule(svc RuleUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		merchantID, ok := parseUpsertRulePath(r.URL.Path)
		if !ok {
			writeError(w, r, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req upsertRuleRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		rule, err := svc.UpsertRule(r.Context(), app.UpsertRuleInput{
			MerchantID: merchantID,
			Rate:       req.Rate,
			Cap:        req.Cap,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		writeData(w, r, http.StatusOK, upsertRuleResponse{
			MerchantID: rule.MerchantID,
			Rate:       rule.Rate,
			Cap:        rule.Cap,
		})
	}
}

func parseUpsertRulePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "merchants" || parts[2] != "cashback-rule" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type upsertRuleRequest struct {
	Rate decimal.Decimal  `json:"rate"`
	Cap  *decimal.Decimal `json:"cap"`
}

type upsertRuleResponse struct {
	MerchantID string           `json:"merchant_id"`
	Rate       decimal.Decimal  `json:"rate"`
	Cap        *decimal.Decimal `json:"cap"`
}
