// File: internal/usecase/notification_uc_test.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rental-payment-ledger/internal/domain/model"
)

func TestEnqueueReceiptComposesBody(t *testing.T) {
	outbox := newMemOutboxRepo()
	uc := NewNotificationUseCase(outbox, &fakeNotifier{}, newTestLogger())

	name := "Jane Renter"
	paidAt := time.Now()
	err := uc.EnqueueReceipt(context.Background(), &model.Payment{
		Reference:     "ref-1",
		Amount:        1500,
		Currency:      "KES",
		PaymentMethod: "card",
		CustomerEmail: "jane@example.com",
		CustomerName:  &name,
		PaidAt:        &paidAt,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("EnqueueReceipt: %v", err)
	}

	pending, _ := outbox.ListPending(context.Background(), nil, 10)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	n := pending[0]
	if n.Recipient != "jane@example.com" {
		t.Errorf("recipient = %q", n.Recipient)
	}
	if n.Kind != model.NotificationKindPaymentReceipt {
		t.Errorf("kind = %q", n.Kind)
	}
	for _, want := range []string{"Jane Renter", "KES 1500.00", "ref-1"} {
		if !strings.Contains(n.Body, want) {
			t.Errorf("body missing %q:\n%s", want, n.Body)
		}
	}
}

func TestEnqueueReceiptSkipsMissingEmail(t *testing.T) {
	outbox := newMemOutboxRepo()
	uc := NewNotificationUseCase(outbox, &fakeNotifier{}, newTestLogger())

	if err := uc.EnqueueReceipt(context.Background(), &model.Payment{Reference: "ref-anon", Amount: 100}); err != nil {
		t.Fatalf("EnqueueReceipt: %v", err)
	}
	if pending, _ := outbox.ListPending(context.Background(), nil, 10); len(pending) != 0 {
		t.Errorf("pending = %d, want 0 without a recipient", len(pending))
	}
}

func TestDispatchPendingSendsAndMarks(t *testing.T) {
	outbox := newMemOutboxRepo()
	notifier := &fakeNotifier{}
	uc := NewNotificationUseCase(outbox, notifier, newTestLogger())
	ctx := context.Background()

	for _, id := range []string{"n1", "n2"} {
		_ = outbox.Insert(ctx, nil, &model.NotificationLog{
			ID: id, Kind: model.NotificationKindPaymentReceipt,
			Recipient: id + "@example.com", Subject: "s", Body: "b",
			Status: model.NotificationStatusPending, CreatedAt: time.Now(),
		})
	}

	sent, err := uc.DispatchPending(ctx)
	if err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2", sent)
	}
	if pending, _ := outbox.ListPending(ctx, nil, 10); len(pending) != 0 {
		t.Errorf("pending after dispatch = %d, want 0", len(pending))
	}
	if len(notifier.sent) != 2 {
		t.Errorf("deliveries = %d, want 2", len(notifier.sent))
	}
}

func TestDispatchPendingRetriesThenParksFailures(t *testing.T) {
	outbox := newMemOutboxRepo()
	notifier := &fakeNotifier{sendErr: errors.New("smtp down")}
	uc := NewNotificationUseCase(outbox, notifier, newTestLogger())
	ctx := context.Background()

	_ = outbox.Insert(ctx, nil, &model.NotificationLog{
		ID: "n1", Recipient: "a@example.com", Subject: "s", Body: "b",
		Status: model.NotificationStatusPending, CreatedAt: time.Now(),
	})

	for i := 0; i < maxSendAttempts; i++ {
		sent, err := uc.DispatchPending(ctx)
		if err != nil {
			t.Fatalf("dispatch %d: %v", i+1, err)
		}
		if sent != 0 {
			t.Fatalf("dispatch %d sent %d, want 0", i+1, sent)
		}
	}

	// Attempt budget exhausted: the row is parked as failed, not retried.
	if pending, _ := outbox.ListPending(ctx, nil, 10); len(pending) != 0 {
		t.Fatalf("row still pending after %d attempts", maxSendAttempts)
	}
	row := outbox.store["n1"]
	if row.Status != model.NotificationStatusFailed {
		t.Errorf("status = %v, want failed", row.Status)
	}
	if row.Attempts != maxSendAttempts {
		t.Errorf("attempts = %d, want %d", row.Attempts, maxSendAttempts)
	}
	if row.LastError == nil || *row.LastError != "smtp down" {
		t.Errorf("last error = %v", row.LastError)
	}
}
