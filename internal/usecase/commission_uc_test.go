// File: internal/usecase/commission_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/repository"
)

type commissionFixture struct {
	commissions *memCommissionRepo
	bookings    *memBookingRepo
	profiles    *memProfileRepo
	settings    *fakeSettings
	uc          CommissionUseCase
}

func newCommissionFixture() *commissionFixture {
	f := &commissionFixture{
		commissions: newMemCommissionRepo(),
		bookings:    newMemBookingRepo(),
		profiles:    newMemProfileRepo(),
		settings:    &fakeSettings{},
	}
	f.uc = NewCommissionUseCase(f.commissions, f.bookings, f.profiles, f.settings, newTestLogger())
	return f
}

func (f *commissionFixture) addReferredBooking(bookingID, renterID, affiliateID string, subtotal float64) {
	f.bookings.store[bookingID] = &repository.BookingRef{
		ID:            bookingID,
		RenterID:      renterID,
		OwnerID:       "owner-1",
		Subtotal:      subtotal,
		PaymentStatus: model.BookingPaymentStatusUnpaid,
	}
	f.profiles.referrer[renterID] = &affiliateID
}

func TestCalculateCommissionAmount(t *testing.T) {
	f := newCommissionFixture()
	f.addReferredBooking("b1", "user-1", "aff-1", 3500)
	f.settings.setRate(10)

	c, err := f.uc.Calculate(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if c.Amount != 350 {
		t.Errorf("amount = %v, want 350", c.Amount)
	}
	if c.CommissionRate != 10 {
		t.Errorf("rate = %v, want 10", c.CommissionRate)
	}
	if c.Status != model.CommissionStatusPaid {
		t.Errorf("status = %v, want paid", c.Status)
	}
	if c.ReferralUserID != "user-1" {
		t.Errorf("referral user = %q, want user-1", c.ReferralUserID)
	}
}

func TestCalculateCommissionNoReferral(t *testing.T) {
	f := newCommissionFixture()
	f.bookings.store["b1"] = &repository.BookingRef{ID: "b1", RenterID: "user-1", OwnerID: "owner-1", Subtotal: 1000}

	c, err := f.uc.Calculate(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if c != nil {
		t.Errorf("commission = %+v, want nil for unreferred renter", c)
	}
}

func TestCalculateCommissionDuplicate(t *testing.T) {
	f := newCommissionFixture()
	f.addReferredBooking("b1", "user-1", "aff-1", 1000)

	if _, err := f.uc.Calculate(context.Background(), "b1"); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, err := f.uc.Calculate(context.Background(), "b1")
	if !errors.Is(err, domain.ErrDuplicateCommission) {
		t.Errorf("err = %v, want ErrDuplicateCommission", err)
	}
	total, _ := f.commissions.SumPaidByAffiliate(context.Background(), nil, "aff-1")
	if total != 100 {
		t.Errorf("total = %v, want single 100 commission", total)
	}
}

func TestCalculateCommissionSnapshotsRate(t *testing.T) {
	f := newCommissionFixture()
	f.addReferredBooking("b1", "user-1", "aff-1", 1000)
	f.addReferredBooking("b2", "user-2", "aff-1", 1000)

	f.settings.setRate(10)
	first, err := f.uc.Calculate(context.Background(), "b1")
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	// Raising the rate afterwards must not rewrite the earlier record.
	f.settings.setRate(15)
	second, err := f.uc.Calculate(context.Background(), "b2")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if got := f.commissions.byBooking("b1"); got.Amount != 100 || got.CommissionRate != 10 {
		t.Errorf("earlier commission mutated: amount=%v rate=%v", got.Amount, got.CommissionRate)
	}
	if second.Amount != 150 || second.CommissionRate != 15 {
		t.Errorf("new commission: amount=%v rate=%v, want 150 at 15", second.Amount, second.CommissionRate)
	}
	_ = first
}

func TestCalculateCommissionUnknownBooking(t *testing.T) {
	f := newCommissionFixture()
	if _, err := f.uc.Calculate(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCommissionHistory(t *testing.T) {
	f := newCommissionFixture()
	f.addReferredBooking("b1", "user-1", "aff-1", 1000)
	f.addReferredBooking("b2", "user-2", "aff-1", 2000)
	f.addReferredBooking("b3", "user-3", "aff-2", 4000)

	for _, id := range []string{"b1", "b2", "b3"} {
		if _, err := f.uc.Calculate(context.Background(), id); err != nil {
			t.Fatalf("setup %s: %v", id, err)
		}
	}

	list, err := f.uc.History(context.Background(), "aff-1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	for _, c := range list {
		if c.AffiliateID != "aff-1" {
			t.Errorf("leaked commission for %q", c.AffiliateID)
		}
	}
}
