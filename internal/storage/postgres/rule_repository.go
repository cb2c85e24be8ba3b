package postgres

import (
	"context"
	"fmt"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type RuleRepository struct {
	pool *pgxpool.Pool
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

func (r *RuleRepository) UpsertRule(ctx context.Context, rule domain.CashbackRule) (domain.CashbackRule, error) {
	const stmt = `
INSERT INTO cashback_rules (merchant_id, rate, cap, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (merchant_id)
DO UPDATE SET rate = EXCLUDED.rate, cap = EXCLUDED.cap, updated_at = EXCLUDED.updated_at
RETURNING merchant_id, rate, cap, created_at, updated_at`

	cap := decimal.NullDecimal{}
	if rule.Cap != nil {
		cap = decimal.NullDecimal{Decimal: *rule.Cap, Valid: true}
	}

	var out domain.CashbackRule
	var outCap decimal.NullDecimal
	err := r.pool.QueryRow(ctx, stmt, rule.MerchantID, rule.Rate, cap, rule.CreatedAt, rule.UpdatedAt).
		Scan(&out.MerchantID, &out.Rate, &outCap, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return domain.CashbackRule{}, fmt.Errorf("upsert cashback rule: %w", err)
	}
	if outCap.Valid {
		out.Cap = &outCap.Decimal
	}
	return out, nil
}
