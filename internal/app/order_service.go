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

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
}

// OrderService creates orders. Creation is a single-row write with no
// concurrency hazard; the idempotency cache only shields it from client
// retries.
type OrderService struct {
	repo     OrderRepository
	idem     IdempotencyStore
	clock    clock.Clock
	cacheTTL time.Duration
}

func NewOrderService(repo OrderRepository, idem IdempotencyStore, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:     repo,
		idem:     idem,
		clock:    clk,
		cacheTTL: defaultCacheTTL,
	}
}

type CreateOrderInput struct {
	UserID         string
	MerchantID     string
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
}

var minOrderAmount = decimal.NewFromFloat(0.01)

func (in CreateOrderInput) validate() error {
	if in.UserID == "" {
		return domain.ErrUserIDRequired
	}
	if in.MerchantID == "" {
		return domain.ErrMerchantIDRequired
	}
	if in.Amount.LessThan(minOrderAmount) {
		return domain.ErrInvalidAmount
	}
	if !domain.SupportedCurrencies[in.Currency] {
		return domain.ErrInvalidCurrency
	}
	return nil
}

// fingerprintBody is the canonical shape hashed for create-order idempotency.
type fingerprintBody struct {
	UserID     string          `json:"userId"`
	MerchantID string          `json:"merchantId"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
}

type OrderResult struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	MerchantID string             `json:"merchant_id"`
	Amount     decimal.Decimal    `json:"amount"`
	Currency   string             `json:"currency"`
	Status     domain.OrderStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

const createOrderScope = "POST:/orders"

func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (OrderResult, error) {
	if err := in.validate(); err != nil {
		return OrderResult{}, err
	}

	if in.IdempotencyKey == "" {
		return s.create(ctx, in)
	}

	body, err := json.Marshal(fingerprintBody{
		UserID:     in.UserID,
		MerchantID: in.MerchantID,
		Amount:     in.Amount,
		Currency:   in.Currency,
	})
	if err != nil {
		return OrderResult{}, fmt.Errorf("encode request body: %w", err)
	}
	hash := Fingerprint("POST", "/orders", body)

	cached, err := s.idem.Lookup(ctx, in.IdempotencyKey, createOrderScope)
	if err != nil {
		return OrderResult{}, fmt.Errorf("idempotency lookup: %w", err)
	}
	if cached != nil && !cached.Expired(s.clock.Now()) {
		if cached.RequestHash != hash {
			return OrderResult{}, domain.ErrIdempotencyConflict
		}
		var res OrderResult
		if err := json.Unmarshal(cached.Response, &res); err != nil {
			return OrderResult{}, fmt.Errorf("decode cached response: %w", err)
		}
		return res, nil
	}

	res, err := s.create(ctx, in)
	if err != nil {
		return OrderResult{}, err
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return OrderResult{}, fmt.Errorf("encode response: %w", err)
	}
	expires := s.clock.Now().Add(s.cacheTTL)
	if err := s.idem.Record(ctx, domain.IdempotencyRecord{
		Key:         in.IdempotencyKey,
		Scope:       createOrderScope,
		RequestHash: hash,
		Response:    payload,
		ExpiresAt:   &expires,
	}); err != nil {
		return OrderResult{}, fmt.Errorf("idempotency record: %w", err)
	}
	return res, nil
}

func (s *OrderService) create(ctx context.Context, in CreateOrderInput) (OrderResult, error) {
	now := s.clock.Now()
	order := domain.Order{
		ID:         newID(),
		UserID:     in.UserID,
		MerchantID: in.MerchantID,
		Amount:     in.Amount,
		Currency:   in.Currency,
		Status:     domain.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return OrderResult{}, err
	}
	return OrderResult{
		ID:         order.ID,
		UserID:     order.UserID,
		MerchantID: order.MerchantID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt,
	}, nil
}
