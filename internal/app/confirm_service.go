package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/clock"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// CreditInsert is the outcome of attempting to create a CREDIT ledger entry.
// Created=false means the per-order uniqueness constraint fired and Entry is
// the pre-existing credit read back inside the same transaction.
type CreditInsert struct {
	Entry   domain.LedgerEntry
	Created bool
}

type ConfirmRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	GetRuleByMerchant(ctx context.Context, merchantID string) (*domain.CashbackRule, error)
	CreateCreditEntry(ctx context.Context, entry domain.LedgerEntry) (CreditInsert, error)
}

type IdempotencyStore interface {
	Lookup(ctx context.Context, key, scope string) (*domain.IdempotencyRecord, error)
	Record(ctx context.Context, rec domain.IdempotencyRecord) error
}

type OrderConfirmedEvent struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	MerchantID    string          `json:"merchant_id"`
	LedgerEntryID string          `json:"ledger_entry_id"`
	Cashback      decimal.Decimal `json:"cashback"`
	Currency      string          `json:"currency"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}

type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, evt OrderConfirmedEvent) error
}

// ConfirmService confirms orders and credits cashback exactly once per order.
// Retries with an idempotency key replay the cached response; retries without
// one converge on the same ledger entry through the storage uniqueness
// constraint.
type ConfirmService struct {
	repo     ConfirmRepository
	idem     IdempotencyStore
	clock    clock.Clock
	events   EventPublisher
	cacheTTL time.Duration
}

const defaultCacheTTL = 24 * time.Hour

func NewConfirmService(repo ConfirmRepository, idem IdempotencyStore, clk clock.Clock, opts ...ConfirmServiceOption) *ConfirmService {
	svc := &ConfirmService{
		repo:     repo,
		idem:     idem,
		clock:    clk,
		cacheTTL: defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ConfirmServiceOption func(*ConfirmService)

// WithEventPublisher enables best-effort order-confirmed events after a
// first-time credit commits.
func WithEventPublisher(p EventPublisher) ConfirmServiceOption {
	return func(s *ConfirmService) {
		s.events = p
	}
}

// WithCacheTTL overrides the default 24h idempotency-cache expiry.
func WithCacheTTL(d time.Duration) ConfirmServiceOption {
	return func(s *ConfirmService) {
		if d > 0 {
			s.cacheTTL = d
		}
	}
}

type ConfirmOrderInput struct {
	OrderID        string
	IdempotencyKey string
}

const confirmOrderScope = "POST:/orders/{id}/confirm"

type CashbackAmount struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type ConfirmResult struct {
	OrderID       string             `json:"id"`
	Status        domain.OrderStatus `json:"status"`
	Cashback      CashbackAmount     `json:"cashback"`
	LedgerEntryID string             `json:"ledger_entry_id"`
}

func (s *ConfirmService) Confirm(ctx context.Context, in ConfirmOrderInput) (ConfirmResult, error) {
	if in.OrderID == "" {
		return ConfirmResult{}, domain.ErrInvalidID
	}
	if in.IdempotencyKey == "" {
		// Callers without a key accept at-least-once HTTP semantics; the
		// ledger constraint still keeps the credit at-most-once.
		return s.confirmAndCredit(ctx, in.OrderID)
	}

	// The scope is the route pattern, not the concrete path: the same key on
	// a different order collides here and surfaces as a fingerprint conflict.
	hash := Fingerprint("POST", "/orders/"+in.OrderID+"/confirm", nil)

	cached, err := s.idem.Lookup(ctx, in.IdempotencyKey, confirmOrderScope)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("idempotency lookup: %w", err)
	}
	if cached != nil && !cached.Expired(s.clock.Now()) {
		if cached.RequestHash != hash {
			return ConfirmResult{}, domain.ErrIdempotencyConflict
		}
		var res ConfirmResult
		if err := json.Unmarshal(cached.Response, &res); err != nil {
			return ConfirmResult{}, fmt.Errorf("decode cached response: %w", err)
		}
		return res, nil
	}

	res, err := s.confirmAndCredit(ctx, in.OrderID)
	if err != nil {
		return ConfirmResult{}, err
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("encode response: %w", err)
	}
	rec := domain.IdempotencyRecord{
		Key:         in.IdempotencyKey,
		Scope:       confirmOrderScope,
		RequestHash: hash,
		Response:    payload,
	}
	if s.cacheTTL > 0 {
		expires := s.clock.Now().Add(s.cacheTTL)
		rec.ExpiresAt = &expires
	}
	if err := s.idem.Record(ctx, rec); err != nil {
		return ConfirmResult{}, fmt.Errorf("idempotency record: %w", err)
	}
	return res, nil
}

// confirmAndCredit runs the atomic transition-and-credit transaction. The
// credit insert and the status flip commit together or not at all.
func (s *ConfirmService) confirmAndCredit(ctx context.Context, orderID string) (ConfirmResult, error) {
	now := s.clock.Now()

	var result ConfirmResult
	var event OrderConfirmedEvent
	var firstCredit bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		switch order.Status {
		case domain.OrderStatusCancelled:
			return domain.ErrOrderCancelled
		case domain.OrderStatusCreated:
			if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusConfirmed); err != nil {
				return err
			}
			order.Status = domain.OrderStatusConfirmed
		}

		rule, err := s.repo.GetRuleByMerchant(txCtx, order.MerchantID)
		if err != nil {
			return err
		}
		cashback := domain.ComputeCashback(order.Amount, rule)

		ins, err := s.repo.CreateCreditEntry(txCtx, domain.LedgerEntry{
			ID:        newID(),
			UserID:    order.UserID,
			OrderID:   order.ID,
			EntryType: domain.LedgerEntryCredit,
			Amount:    cashback,
			Currency:  order.Currency,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		// A lost race leaves the winner's entry in place; both callers
		// converge on the same entry id.
		firstCredit = ins.Created
		result = ConfirmResult{
			OrderID: order.ID,
			Status:  order.Status,
			Cashback: CashbackAmount{
				Amount:   ins.Entry.Amount,
				Currency: ins.Entry.Currency,
			},
			LedgerEntryID: ins.Entry.ID,
		}
		event = OrderConfirmedEvent{
			OrderID:       order.ID,
			UserID:        order.UserID,
			MerchantID:    order.MerchantID,
			LedgerEntryID: ins.Entry.ID,
			Cashback:      ins.Entry.Amount,
			Currency:      ins.Entry.Currency,
			ConfirmedAt:   now,
		}
		return nil
	})
	if err != nil {
		return ConfirmResult{}, err
	}

	if firstCredit && s.events != nil {
		// The credit is already committed; delivery failures must not fail
		// the confirm call.
		_ = s.events.PublishOrderConfirmed(ctx, event)
	}
	return result, nil
}
