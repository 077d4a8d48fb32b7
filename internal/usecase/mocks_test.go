// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"rental-payment-ledger/internal/domain"
	"rental-payment-ledger/internal/domain/model"
	"rental-payment-ledger/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

// ---- payments ----

type memPaymentRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Payment // by reference
	ownerOf   map[string]string         // bookingID -> ownerID, for the owner sum
	upsertErr error
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{store: make(map[string]*model.Payment), ownerOf: make(map[string]string)}
}

func (m *memPaymentRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	if prev, ok := m.store[p.Reference]; ok {
		// Mirror ON CONFLICT: the original row id and created_at survive.
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	}
	m.store[p.Reference] = &cp
	return nil
}

func (m *memPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaymentRepo) SumSuccessfulBookingPayments(ctx context.Context, tx repository.Tx, payeeID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, p := range m.store {
		if p.Status != model.PaymentStatusSuccess || p.BookingID == nil {
			continue
		}
		if m.ownerOf[*p.BookingID] == payeeID {
			sum += p.Amount
		}
	}
	return sum, nil
}

func (m *memPaymentRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// ---- subscriptions ----

type memSubscriptionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription // by subscription code
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	if prev, ok := m.store[s.SubscriptionCode]; ok {
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	}
	m.store[s.SubscriptionCode] = &cp
	return nil
}

func (m *memSubscriptionRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriptionRepo) UpdateStatusIfActive(ctx context.Context, tx repository.Tx, code string, status model.SubscriptionStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[code]
	if !ok || s.Status != model.SubscriptionStatusActive {
		return false, nil
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	if status == model.SubscriptionStatusCancelled {
		now := time.Now()
		s.CancelledAt = &now
	}
	return true, nil
}

// ---- commissions ----

type memCommissionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.AffiliateCommission // by booking id (unique)
}

func newMemCommissionRepo() *memCommissionRepo {
	return &memCommissionRepo{store: make(map[string]*model.AffiliateCommission)}
}

func (m *memCommissionRepo) Insert(ctx context.Context, tx repository.Tx, c *model.AffiliateCommission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[c.BookingID]; ok {
		return domain.ErrDuplicateCommission
	}
	cp := *c
	m.store[c.BookingID] = &cp
	return nil
}

func (m *memCommissionRepo) SumPaidByAffiliate(ctx context.Context, tx repository.Tx, affiliateID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, c := range m.store {
		if c.AffiliateID == affiliateID && c.Status == model.CommissionStatusPaid {
			sum += c.Amount
		}
	}
	return sum, nil
}

func (m *memCommissionRepo) ListByAffiliate(ctx context.Context, tx repository.Tx, affiliateID string) ([]*model.AffiliateCommission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.AffiliateCommission
	for _, c := range m.store {
		if c.AffiliateID == affiliateID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memCommissionRepo) byBooking(bookingID string) *model.AffiliateCommission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[bookingID]
}

// ---- withdrawals ----

type memWithdrawalRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Withdrawal
	insertErr error
}

func newMemWithdrawalRepo() *memWithdrawalRepo {
	return &memWithdrawalRepo{store: make(map[string]*model.Withdrawal)}
}

func (m *memWithdrawalRepo) Insert(ctx context.Context, tx repository.Tx, w *model.Withdrawal) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.store[w.ID] = &cp
	return nil
}

func (m *memWithdrawalRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWithdrawalRepo) SumHeldByUser(ctx context.Context, tx repository.Tx, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, w := range m.store {
		if w.UserID == userID && w.Status.CountsAgainstBalance() {
			sum += w.Amount
		}
	}
	return sum, nil
}

func (m *memWithdrawalRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, next model.WithdrawalStatus, processedBy string, txRef string, notes *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.store[id]
	if !ok || w.Status.IsTerminal() {
		return false, nil
	}
	now := time.Now()
	w.Status = next
	w.ProcessedBy = &processedBy
	w.ProcessedAt = &now
	if txRef != "" {
		w.TransactionReference = txRef
	}
	if notes != nil {
		w.AdminNotes = notes
	}
	return true, nil
}

func (m *memWithdrawalRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Withdrawal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Withdrawal
	for _, w := range m.store {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memWithdrawalRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// ---- bookings ----

type memBookingRepo struct {
	mu          sync.RWMutex
	store       map[string]*repository.BookingRef
	markPaidErr error
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{store: make(map[string]*repository.BookingRef)}
}

func (m *memBookingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*repository.BookingRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookingRepo) MarkPaid(ctx context.Context, tx repository.Tx, id, reference string, amount float64) (bool, error) {
	if m.markPaidErr != nil {
		return false, m.markPaidErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.store[id]
	if !ok || b.PaymentStatus == model.BookingPaymentStatusPaid {
		return false, nil
	}
	b.PaymentStatus = model.BookingPaymentStatusPaid
	return true, nil
}

// ---- user profiles ----

type memProfileRepo struct {
	mu        sync.RWMutex
	idByEmail map[string]string
	referrer  map[string]*string // userID -> affiliateID
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{idByEmail: make(map[string]string), referrer: make(map[string]*string)}
}

func (m *memProfileRepo) FindIDByEmail(ctx context.Context, tx repository.Tx, email string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.idByEmail[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

func (m *memProfileRepo) ReferrerOf(ctx context.Context, tx repository.Tx, userID string) (*string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.referrer[userID], nil
}

// ---- notification outbox ----

type memOutboxRepo struct {
	mu    sync.RWMutex
	store map[string]*model.NotificationLog
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{store: make(map[string]*model.NotificationLog)}
}

func (m *memOutboxRepo) Insert(ctx context.Context, tx repository.Tx, n *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.store[n.ID] = &cp
	return nil
}

func (m *memOutboxRepo) ListPending(ctx context.Context, tx repository.Tx, limit int) ([]*model.NotificationLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.NotificationLog
	for _, n := range m.store {
		if n.Status == model.NotificationStatusPending {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memOutboxRepo) MarkSent(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	now := time.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &now
	return nil
}

func (m *memOutboxRepo) MarkAttemptFailed(ctx context.Context, tx repository.Tx, id string, cause string, maxAttempts int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Attempts++
	n.LastError = &cause
	if n.Attempts >= maxAttempts {
		n.Status = model.NotificationStatusFailed
	}
	return nil
}

// ---- settings, locker, notifier, tx manager ----

type fakeSettings struct {
	mu     sync.RWMutex
	rate   float64
	secret string
}

func (f *fakeSettings) Get(ctx context.Context, key, envFallback string) string { return "" }
func (f *fakeSettings) GatewaySecretKey(ctx context.Context) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.secret
}
func (f *fakeSettings) GatewayPublicKey(ctx context.Context) string { return "" }
func (f *fakeSettings) CommissionRate(ctx context.Context) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.rate == 0 {
		return 10
	}
	return f.rate
}
func (f *fakeSettings) setRate(rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
}

// fakeLocker rejects a second holder immediately instead of retrying.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[key]; ok {
		return "", domain.ErrLockUnavailable
	}
	token := key + "-token"
	f.held[key] = token
	return token, nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
	}
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []string // recipients
	sendErr error
}

func (f *fakeNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, recipient)
	return nil
}

// memTxManager serializes callbacks with a mutex, standing in for the
// serializable isolation the Postgres TxManager provides.
type memTxManager struct {
	mu sync.Mutex
}

func (m *memTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}
