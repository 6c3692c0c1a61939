//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"scouting-backend/internal/domain/model"
)

func TestInvoiceRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewInvoiceRepo(testPool)

	t.Run("sequence hands out distinct numbers under concurrency", func(t *testing.T) {
		cleanup(t)

		const workers = 8
		var wg sync.WaitGroup
		nums := make(chan int64, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := repo.NextNumber(ctx, nil)
				if err != nil {
					t.Errorf("NextNumber: %v", err)
					return
				}
				nums <- n
			}()
		}
		wg.Wait()
		close(nums)

		seen := make(map[int64]bool)
		for n := range nums {
			if seen[n] {
				t.Errorf("sequence value %d handed out twice", n)
			}
			seen[n] = true
		}
	})

	t.Run("saves and lists invoices per user", func(t *testing.T) {
		cleanup(t)
		seedTestUser(t, ctx, "user-1")

		payRepo := NewPaymentRepo(testPool)
		p := newTestPayment("user-1")
		if err := payRepo.Save(ctx, nil, p); err != nil {
			t.Fatalf("failed to save payment: %v", err)
		}

		now := time.Now().Truncate(time.Millisecond)
		inv := &model.Invoice{
			ID:            uuid.NewString(),
			UserID:        "user-1",
			PaymentID:     p.ID,
			InvoiceNumber: "INV-2026-000001",
			Amount:        5000,
			Currency:      "XOF",
			IssuedAt:      now,
			PaidAt:        &now,
		}
		if err := repo.Save(ctx, nil, inv); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		out, err := repo.ListByUser(ctx, nil, "user-1", 10)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(out) != 1 || out[0].InvoiceNumber != "INV-2026-000001" {
			t.Errorf("unexpected invoices: %+v", out)
		}
	})
}
