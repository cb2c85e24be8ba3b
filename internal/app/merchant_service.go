package app

import (
	"context"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/clock"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

type RuleRepository interface {
	UpsertRule(ctx context.Context, rule domain.CashbackRule) (domain.CashbackRule, error)
}

// MerchantService manages per-merchant cashback rules. Rules are read-only
// input to the confirm path; upserts here carry no concurrency hazard beyond
// a single-row write.
type MerchantService struct {
	repo  RuleRepository
	clock clock.Clock
}

func NewMerchantService(repo RuleRepository, clk clock.Clock) *MerchantService {
	return &MerchantService{
		repo:  repo,
		clock: clk,
	}
}

type UpsertRuleInput struct {
	MerchantID string
	Rate       decimal.Decimal
	Cap        *decimal.Decimal
}

func (s *MerchantService) UpsertRule(ctx context.Context, in UpsertRuleInput) (domain.CashbackRule, error) {
	if in.MerchantID == "" {
		return domain.CashbackRule{}, domain.ErrMerchantIDRequired
	}
	if in.Rate.IsNegative() || in.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return domain.CashbackRule{}, domain.ErrInvalidRate
	}
	if in.Cap != nil && in.Cap.IsNegative() {
		return domain.CashbackRule{}, domain.ErrInvalidCap
	}

	now := s.clock.Now()
	return s.repo.UpsertRule(ctx, domain.CashbackRule{
		MerchantID: in.MerchantID,
		Rate:       in.Rate,
		Cap:        in.Cap,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}
