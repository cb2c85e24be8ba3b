package postgres

import (
	"context"
	"fmt"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) ListEntriesByUser(ctx context.Context, userID string) ([]domain.LedgerEntry, error) {
	const query = `
SELECT id, user_id, order_id, entry_type, amount, currency, created_at
FROM ledger_entries
WHERE user_id = $1
ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var entryType string
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &entryType, &e.Amount, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.EntryType = domain.LedgerEntryType(entryType)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}
