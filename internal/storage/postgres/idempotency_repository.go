package postgres

import (
	"context"
	"fmt"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepository persists cached responses for idempotent operations.
// It is deliberately outside the confirm transaction: a crash between commit
// and Record is tolerable because a retry converges through the ledger's
// uniqueness constraint.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

func (r *IdempotencyRepository) Lookup(ctx context.Context, key, scope string) (*domain.IdempotencyRecord, error) {
	const query = `
SELECT key, scope, request_hash, response_body, expires_at, created_at, updated_at
FROM idempotency_keys
WHERE key = $1 AND scope = $2`

	var rec domain.IdempotencyRecord
	err := r.pool.QueryRow(ctx, query, key, scope).
		Scan(&rec.Key, &rec.Scope, &rec.RequestHash, &rec.Response, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup idempotency record: %w", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) Record(ctx context.Context, rec domain.IdempotencyRecord) error {
	const stmt = `
INSERT INTO idempotency_keys (key, scope, request_hash, response_body, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (key, scope)
DO UPDATE SET request_hash = EXCLUDED.request_hash,
              response_body = EXCLUDED.response_body,
              expires_at = EXCLUDED.expires_at,
              updated_at = NOW()`

	_, err := r.pool.Exec(ctx, stmt, rec.Key, rec.Scope, rec.RequestHash, rec.Response, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("record idempotency record: %w", err)
	}
	return nil
}
