package postgres

import (
	"context"
	"fmt"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ConfirmRepository backs the confirm-and-credit transaction. The uniqueness
// constraint on ledger_entries(order_id, entry_type) is the final arbiter of
// "one credit per order".
type ConfirmRepository struct {
	pool *pgxpool.Pool
}

func NewConfirmRepository(pool *pgxpool.Pool) *ConfirmRepository {
	return &ConfirmRepository{pool: pool}
}

func (r *ConfirmRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ConfirmRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	const query = `
SELECT id, user_id, merchant_id, amount, currency, status, created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var o domain.Order
	var status string
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.ID, &o.UserID, &o.MerchantID, &o.Amount, &o.Currency, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *ConfirmRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *ConfirmRepository) GetRuleByMerchant(ctx context.Context, merchantID string) (*domain.CashbackRule, error) {
	const query = `
SELECT merchant_id, rate, cap, created_at, updated_at
FROM cashback_rules
WHERE merchant_id = $1`

	var rule domain.CashbackRule
	var cap decimal.NullDecimal
	err := r.queryRow(ctx, query, merchantID).
		Scan(&rule.MerchantID, &rule.Rate, &cap, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get cashback rule: %w", err)
	}
	if cap.Valid {
		rule.Cap = &cap.Decimal
	}
	return &rule, nil
}

func (r *ConfirmRepository) CreateCreditEntry(ctx context.Context, entry domain.LedgerEntry) (app.CreditInsert, error) {
	const stmt = `
INSERT INTO ledger_entries (id, user_id, order_id, entry_type, amount, currency, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := r.insertEntry(ctx, stmt,
		entry.ID, entry.UserID, entry.OrderID, entry.EntryType, entry.Amount, entry.Currency, entry.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent or prior confirm already credited this order;
			// converge on the winning entry instead of erroring.
			existing, err := r.getCreditByOrder(ctx, entry.OrderID)
			if err != nil {
				return app.CreditInsert{}, err
			}
			return app.CreditInsert{Entry: existing, Created: false}, nil
		}
		return app.CreditInsert{}, fmt.Errorf("create ledger entry: %w", err)
	}
	return app.CreditInsert{Entry: entry, Created: true}, nil
}

// insertEntry runs the insert under a savepoint when inside a transaction so
// a unique violation leaves the surrounding transaction usable for the
// read-back.
func (r *ConfirmRepository) insertEntry(ctx context.Context, sql string, args ...any) error {
	tx := txFromContext(ctx)
	if tx == nil {
		_, err := r.pool.Exec(ctx, sql, args...)
		return err
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := sp.Exec(ctx, sql, args...); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func (r *ConfirmRepository) getCreditByOrder(ctx context.Context, orderID string) (domain.LedgerEntry, error) {
	const query = `
SELECT id, user_id, order_id, entry_type, amount, currency, created_at
FROM ledger_entries
WHERE order_id = $1 AND entry_type = $2`

	var e domain.LedgerEntry
	var entryType string
	err := r.queryRow(ctx, query, orderID, domain.LedgerEntryCredit).
		Scan(&e.ID, &e.UserID, &e.OrderID, &entryType, &e.Amount, &e.Currency, &e.CreatedAt)
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("get credit entry: %w", err)
	}
	e.EntryType = domain.LedgerEntryType(entryType)
	return e, nil
}

func (r *ConfirmRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ConfirmRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
