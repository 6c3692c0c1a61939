//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"scouting-backend/internal/domain/model"
	"scouting-backend/internal/usecase"
)

func TestReconcileUseCase_RepairUnlinked(t *testing.T) {
	ctx := context.Background()

	newDeps := func() (*MockPaymentRepo, *MockInvoiceRepo, *MockUserRepo, *MockAuditRepo, *MockSubscriptionRepo, usecase.ReconcileUseCase) {
		payments := NewMockPaymentRepo()
		invoices := NewMockInvoiceRepo()
		users := NewMockUserRepo()
		audit := NewMockAuditRepo()
		subs := NewMockSubscriptionRepo()
		subUC := usecase.NewSubscriptionUseCase(subs, newTestLogger())
		uc := usecase.NewReconcileUseCase(payments, invoices, users, audit, subUC, NewMockTxManager(), newTestLogger())
		return payments, invoices, users, audit, subs, uc
	}

	completedAt := time.Now().Add(-time.Hour)
	stranded := func(id string) *model.Payment {
		return &model.Payment{
			ID:            "pay-" + id,
			UserID:        "user-1",
			TransactionID: "TXN-" + id,
			Amount:        5000,
			Currency:      "XOF",
			Status:        model.PaymentStatusCompleted,
			CompletedAt:   &completedAt,
			CreatedAt:     completedAt,
		}
	}

	t.Run("applies the missing grant", func(t *testing.T) {
		payments, invoices, users, audit, subs, uc := newDeps()
		_ = payments.Save(ctx, nil, stranded("1"))

		n, err := uc.RepairUnlinked(ctx, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 repaired, got %d", n)
		}

		p, _ := payments.FindByTransactionID(ctx, nil, "TXN-1")
		if p.SubscriptionID == nil {
			t.Fatal("expected subscription linked after repair")
		}
		sub, _ := subs.FindByID(ctx, nil, *p.SubscriptionID)
		if sub == nil || !sub.IsActive(time.Now()) {
			t.Errorf("expected an active subscription, got %+v", sub)
		}
		if sub.UpdatedBy != model.ActorSystem {
			t.Errorf("expected system provenance, got %q", sub.UpdatedBy)
		}
		roles, _ := users.RolesByUser(ctx, nil, "user-1")
		if len(roles) != 1 || roles[0] != model.RoleSubscriber {
			t.Errorf("expected subscriber role, got %v", roles)
		}
		if len(invoices.All()) != 1 {
			t.Errorf("expected one invoice, got %d", len(invoices.All()))
		}
		if !audit.HasAction("payment_repaired") {
			t.Errorf("expected audit entry, got %v", audit.Actions())
		}
	})

	t.Run("ignores already linked and non-completed payments", func(t *testing.T) {
		payments, _, _, _, _, uc := newDeps()

		linked := stranded("1")
		subID := "sub-existing"
		linked.SubscriptionID = &subID
		_ = payments.Save(ctx, nil, linked)

		pending := stranded("2")
		pending.Status = model.PaymentStatusPending
		pending.CompletedAt = nil
		_ = payments.Save(ctx, nil, pending)

		n, err := uc.RepairUnlinked(ctx, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 0 {
			t.Errorf("expected nothing to repair, got %d", n)
		}
	})

	t.Run("a second run is a no-op", func(t *testing.T) {
		payments, invoices, _, _, _, uc := newDeps()
		_ = payments.Save(ctx, nil, stranded("1"))

		if _, err := uc.RepairUnlinked(ctx, 0); err != nil {
			t.Fatalf("first run: %v", err)
		}
		n, err := uc.RepairUnlinked(ctx, 0)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}
		if n != 0 {
			t.Errorf("expected idempotent repair, got %d", n)
		}
		if len(invoices.All()) != 1 {
			t.Errorf("expected one invoice total, got %d", len(invoices.All()))
		}
	})
}
