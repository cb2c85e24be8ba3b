package postgres

import (
	"context"
	"testing"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestRuleRepository_UpsertRule(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRuleRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	cap := decimal.NewFromInt(50)
	rule, err := repo.UpsertRule(ctx, domain.CashbackRule{
		MerchantID: "merchant-1",
		Rate:       decimal.NewFromFloat(0.10),
		Cap:        &cap,
	})
	if err != nil {
		t.Fatalf("insert rule: %v", err)
	}
	if rule.Cap == nil || !rule.Cap.Equal(cap) {
		t.Fatalf("expected cap 50, got %+v", rule.Cap)
	}

	// Upserting again with no cap must clear it.
	rule, err = repo.UpsertRule(ctx, domain.CashbackRule{
		MerchantID: "merchant-1",
		Rate:       decimal.NewFromFloat(0.05),
	})
	if err != nil {
		t.Fatalf("update rule: %v", err)
	}
	if !rule.Rate.Equal(decimal.NewFromFloat(0.05)) {
		t.Fatalf("expected rate 0.05, got %s", rule.Rate)
	}
	if rule.Cap != nil {
		t.Fatalf("expected cap cleared, got %s", rule.Cap)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM cashback_rules`).Scan(&count); err != nil {
		t.Fatalf("count rules: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one rule row, got %d", count)
	}
}
