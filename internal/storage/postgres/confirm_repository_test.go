package postgres

import (
	"context"
	"testing"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/domain"
	"github.com/RendaZhang/shopback-cashback-ledger/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestConfirmRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewConfirmRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	newOrder := func(status domain.OrderStatus) domain.Order {
		return domain.Order{
			UserID:     "user-1",
			MerchantID: "merchant-1",
			Amount:     decimal.NewFromInt(100),
			Currency:   "SGD",
			Status:     status,
		}
	}

	t.Run("GetOrderForUpdate returns order or ErrOrderNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, newOrder(domain.OrderStatusCreated))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			order, err := repo.GetOrderForUpdate(txCtx, orderID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if order.ID != orderID || order.Status != domain.OrderStatusCreated {
				t.Fatalf("unexpected order: %+v", order)
			}
			if !order.Amount.Equal(decimal.NewFromInt(100)) {
				t.Fatalf("unexpected amount: %s", order.Amount)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			_, err := repo.GetOrderForUpdate(txCtx, uuid.NewString())
			if err != domain.ErrOrderNotFound {
				t.Fatalf("expected ErrOrderNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		_, err = repo.GetOrderForUpdate(ctx, "not-a-uuid")
		if err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("UpdateOrderStatus flips status", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, newOrder(domain.OrderStatusCreated))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusConfirmed)
		})
		if err != nil {
			t.Fatalf("update status: %v", err)
		}

		var status string
		if err := pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status); err != nil {
			t.Fatalf("query status: %v", err)
		}
		if status != string(domain.OrderStatusConfirmed) {
			t.Fatalf("expected status CONFIRMED, got %s", status)
		}
	})

	t.Run("GetRuleByMerchant returns nil when absent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		rule, err := repo.GetRuleByMerchant(ctx, "unknown")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rule != nil {
			t.Fatalf("expected nil rule, got %+v", rule)
		}

		cap := decimal.NewFromInt(50)
		testutil.InsertRule(t, ctx, pool, "merchant-1", decimal.NewFromFloat(0.10), &cap)

		rule, err = repo.GetRuleByMerchant(ctx, "merchant-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rule == nil || !rule.Rate.Equal(decimal.NewFromFloat(0.10)) {
			t.Fatalf("unexpected rule: %+v", rule)
		}
		if rule.Cap == nil || !rule.Cap.Equal(cap) {
			t.Fatalf("expected cap 50, got %+v", rule.Cap)
		}
	})

	t.Run("CreateCreditEntry converges on the existing credit", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		orderID := testutil.InsertOrder(t, ctx, pool, newOrder(domain.OrderStatusConfirmed))

		entry := domain.LedgerEntry{
			ID:        uuid.NewString(),
			UserID:    "user-1",
			OrderID:   orderID,
			EntryType: domain.LedgerEntryCredit,
			Amount:    decimal.RequireFromString("5.00"),
			Currency:  "SGD",
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ins, err := repo.CreateCreditEntry(txCtx, entry)
			if err != nil {
				t.Fatalf("first insert: %v", err)
			}
			if !ins.Created || ins.Entry.ID != entry.ID {
				t.Fatalf("expected Created=true with the new entry, got %+v", ins)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		// The second insert hits the uniqueness constraint inside a live
		// transaction and must still read back the winner.
		second := entry
		second.ID = uuid.NewString()
		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			ins, err := repo.CreateCreditEntry(txCtx, second)
			if err != nil {
				t.Fatalf("second insert: %v", err)
			}
			if ins.Created {
				t.Fatalf("expected Created=false on duplicate")
			}
			if ins.Entry.ID != entry.ID {
				t.Fatalf("expected the original entry id %s, got %s", entry.ID, ins.Entry.ID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE order_id = $1`, orderID).Scan(&count); err != nil {
			t.Fatalf("count entries: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected exactly one ledger entry, got %d", count)
		}
	})
}
