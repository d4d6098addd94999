package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"bloodconnect/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// In-memory versions of the repository interfaces. They are safe for
// concurrent use so the race tests can share them between goroutines.

type mockUserRepository struct {
	users     []model.User
	listErr   error
	listCalls int
}

func (m *mockUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.User{}
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type mockDeviceTokenRepository struct {
	mu     sync.Mutex
	tokens []model.DeviceToken // in registration order

	getByTokensCalls int
	getByTokensErr   error
}

func (m *mockDeviceTokenRepository) register(userID string, tokens ...string) {
	for _, t := range tokens {
		m.tokens = append(m.tokens, model.DeviceToken{UserID: userID, Token: t})
	}
}

func (m *mockDeviceTokenRepository) Upsert(ctx context.Context, userID, token, platform string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tokens {
		if t.Token == token {
			m.tokens[i].UserID = userID
			m.tokens[i].Platform = platform
			return nil
		}
	}
	m.tokens = append(m.tokens, model.DeviceToken{UserID: userID, Token: token, Platform: platform})
	return nil
}

func (m *mockDeviceTokenRepository) GetByUserID(ctx context.Context, userID string) ([]model.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.DeviceToken{}
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockDeviceTokenRepository) GetByTokens(ctx context.Context, tokens []string) ([]model.DeviceToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByTokensCalls++
	if m.getByTokensErr != nil {
		return nil, m.getByTokensErr
	}
	want := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		want[t] = true
	}
	out := []model.DeviceToken{}
	for _, t := range m.tokens {
		if want[t.Token] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockDeviceTokenRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.tokens[:0]
	for _, t := range m.tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	m.tokens = kept
	return nil
}

// mockLedgerRepository creates atomically, like both real stores, and
// fails on a done context the way a store client does.
type mockLedgerRepository struct {
	mu      sync.Mutex
	entries map[string]model.LedgerEntry

	existsErr   error
	createErr   error
	createCalls int
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{entries: make(map[string]model.LedgerEntry)}
}

func (m *mockLedgerRepository) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.entries[key]
	return ok, nil
}

func (m *mockLedgerRepository) Create(ctx context.Context, entry model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.entries[entry.Key]; ok {
		return model.ErrAlreadyClaimed
	}
	m.entries[entry.Key] = entry
	return nil
}

// claim stands in for another replica creating key.
func (m *mockLedgerRepository) claim(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = model.LedgerEntry{Key: key}
}

func (m *mockLedgerRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *mockLedgerRepository) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

type mockNotificationRepository struct {
	mu        sync.Mutex
	records   []model.Notification
	createErr error
}

func (m *mockNotificationRepository) CreateBatch(ctx context.Context, notifications []model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.records = append(m.records, notifications...)
	return nil
}

func (m *mockNotificationRepository) ListRecent(ctx context.Context) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Notification, len(m.records))
	for i := range m.records {
		out[i] = m.records[len(m.records)-1-i]
	}
	return out, nil
}

func (m *mockNotificationRepository) userIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for _, r := range m.records {
		ids = append(ids, r.UserID)
	}
	return ids
}

type mockActivityRepository struct {
	mu        sync.Mutex
	entries   []model.DonorActivity
	createErr error
}

func (m *mockActivityRepository) Create(ctx context.Context, a *model.DonorActivity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, *a)
	return nil
}

func (m *mockActivityRepository) ListRecent(ctx context.Context) ([]model.DonorActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.DonorActivity, len(m.entries))
	for i := range m.entries {
		out[i] = m.entries[len(m.entries)-1-i]
	}
	return out, nil
}

func (m *mockActivityRepository) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockPushTransport records every multicast and succeeds for all tokens
// unless failTokens or err says otherwise.
type mockPushTransport struct {
	mu         sync.Mutex
	calls      []model.PushMessage
	err        error
	failTokens map[string]bool

	// hook runs inside SendMulticast before it returns
	hook func()
}

func (m *mockPushTransport) SendMulticast(ctx context.Context, msg model.PushMessage) (*model.MulticastResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, msg)
	err := m.err
	hook := m.hook
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}

	result := &model.MulticastResult{}
	for _, t := range msg.Tokens {
		if m.failTokens[t] {
			result.Add(model.SendResponse{Token: t, Error: "registration-token-not-registered"})
			continue
		}
		result.Add(model.SendResponse{Token: t, Success: true, MessageID: "msg-" + t})
	}
	return result, nil
}

func (m *mockPushTransport) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// =============================================================================
// FIXTURE
// =============================================================================

type dispatchFixture struct {
	users    *mockUserRepository
	tokens   *mockDeviceTokenRepository
	ledger   *mockLedgerRepository
	notifs   *mockNotificationRepository
	activity *mockActivityRepository
	push     *mockPushTransport

	recorder   *ActivityRecorder
	dispatcher *Dispatcher
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		users:    &mockUserRepository{},
		tokens:   &mockDeviceTokenRepository{},
		ledger:   newMockLedgerRepository(),
		notifs:   &mockNotificationRepository{},
		activity: &mockActivityRepository{},
		push:     &mockPushTransport{},
	}
	f.recorder = NewActivityRecorder(f.activity)
	f.dispatcher = NewDispatcher(
		NewTokenResolver(f.users, f.tokens),
		NewLedger(f.ledger),
		f.push,
		f.notifs,
		f.recorder,
		zerolog.Nop(),
	)
	return f
}

func strPtr(s string) *string { return &s }
