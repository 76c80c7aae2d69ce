//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"sermon-subscription-billing/internal/domain"
	"sermon-subscription-billing/internal/domain/model"
	"sermon-subscription-billing/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// MockTxManager serializes all transactions behind one mutex, emulating
// the store's atomic check-then-act guarantees for concurrency tests.
type MockTxManager struct {
	mu sync.Mutex
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, qx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// MockEventRepo is an in-memory WebhookEventRepository.
type MockEventRepo struct {
	mu    sync.RWMutex
	store map[string]*model.WebhookEvent

	SaveFunc     func(ctx context.Context, qx repository.Tx, e *model.WebhookEvent) error
	FinalizeFunc func(ctx context.Context, qx repository.Tx, id string, processed bool, errMsg *string) error
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{store: make(map[string]*model.WebhookEvent)}
}

func (m *MockEventRepo) Save(ctx context.Context, qx repository.Tx, e *model.WebhookEvent) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, qx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[e.ID] = &cp
	return nil
}

func (m *MockEventRepo) Finalize(ctx context.Context, qx repository.Tx, id string, processed bool, errMsg *string) error {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx, qx, id, processed, errMsg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Processed = processed
	e.Error = errMsg
	return nil
}

func (m *MockEventRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.WebhookEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockEventRepo) ListRecent(ctx context.Context, qx repository.Tx, limit, offset int) ([]*model.WebhookEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.sorted()
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockEventRepo) ListUnprocessedOlderThan(ctx context.Context, qx repository.Tx, cutoff time.Time, limit int) ([]*model.WebhookEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.WebhookEvent
	for _, e := range m.sorted() {
		if !e.Processed && e.CreatedAt.Before(cutoff) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockEventRepo) PurgeProcessedBefore(ctx context.Context, qx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.store {
		if e.Processed && e.CreatedAt.Before(cutoff) {
			delete(m.store, id)
			n++
		}
	}
	return n, nil
}

func (m *MockEventRepo) CountUnprocessed(ctx context.Context, qx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.store {
		if !e.Processed {
			n++
		}
	}
	return n, nil
}

func (m *MockEventRepo) sorted() []*model.WebhookEvent {
	out := make([]*model.WebhookEvent, 0, len(m.store))
	for _, e := range m.store {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MockAccountRepo is an in-memory AccountRepository keyed by email.
type MockAccountRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Account

	SaveFunc        func(ctx context.Context, qx repository.Tx, a *model.Account) error
	FindByEmailFunc func(ctx context.Context, qx repository.Tx, email string) (*model.Account, error)
}

func NewMockAccountRepo() *MockAccountRepo {
	return &MockAccountRepo{store: make(map[string]*model.Account)}
}

func (m *MockAccountRepo) Save(ctx context.Context, qx repository.Tx, a *model.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, qx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.store[a.Email]; ok && existing.ID != a.ID {
		return domain.ErrAlreadyExists
	}
	cp := *a
	m.store[a.Email] = &cp
	return nil
}

func (m *MockAccountRepo) FindByEmail(ctx context.Context, qx repository.Tx, email string) (*model.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, qx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAccountRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepo) CountAccounts(ctx context.Context, qx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// MockPlanRepo is an in-memory PlanRepository.
type MockPlanRepo struct {
	mu    sync.RWMutex
	plans []*model.Plan
}

func NewMockPlanRepo() *MockPlanRepo { return &MockPlanRepo{} }

func (m *MockPlanRepo) Save(ctx context.Context, qx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	for i, old := range m.plans {
		if old.ID == p.ID {
			m.plans[i] = &cp
			return nil
		}
	}
	m.plans = append(m.plans, &cp)
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, qx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) FindFirstActive(ctx context.Context, qx repository.Tx) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) ListAll(ctx context.Context, qx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Plan, 0, len(m.plans))
	for _, p := range m.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// MockSubRepo is an in-memory SubscriptionRepository.
type MockSubRepo struct {
	mu   sync.RWMutex
	subs []*model.Subscription

	SaveFunc func(ctx context.Context, qx repository.Tx, s *model.Subscription) error
}

func NewMockSubRepo() *MockSubRepo { return &MockSubRepo{} }

func (m *MockSubRepo) Save(ctx context.Context, qx repository.Tx, s *model.Subscription) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, qx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	for i, old := range m.subs {
		if old.ID == s.ID {
			m.subs[i] = &cp
			return nil
		}
	}
	if s.Status == model.SubscriptionStatusActive {
		for _, old := range m.subs {
			if old.AccountID == s.AccountID && old.Status == model.SubscriptionStatusActive {
				// mirrors the partial unique index on (account_id) WHERE active
				return domain.ErrAlreadyExists
			}
		}
	}
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *MockSubRepo) FindActiveByAccount(ctx context.Context, qx repository.Tx, accountID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.AccountID == accountID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubRepo) CancelActiveByAccount(ctx context.Context, qx repository.Tx, accountID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.subs {
		if s.AccountID == accountID && s.Status == model.SubscriptionStatusActive {
			s.Cancel(at)
			n++
		}
	}
	return n, nil
}

func (m *MockSubRepo) ListByAccount(ctx context.Context, qx repository.Tx, accountID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.subs {
		if s.AccountID == accountID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubRepo) CountByStatus(ctx context.Context, qx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.SubscriptionStatus]int)
	for _, s := range m.subs {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *MockSubRepo) LockAccount(ctx context.Context, qx repository.Tx, accountID string) error {
	// Serialization is provided by MockTxManager's mutex.
	return nil
}

// MockDedup remembers marked transaction ids in memory.
type MockDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewMockDedup() *MockDedup { return &MockDedup{seen: make(map[string]bool)} }

func (m *MockDedup) MarkSeen(ctx context.Context, source, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := source + ":" + transactionID
	if m.seen[key] {
		return true, nil
	}
	m.seen[key] = true
	return false, nil
}
