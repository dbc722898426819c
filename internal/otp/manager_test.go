package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"credauth/internal/domain"

	"github.com/google/uuid"
)

type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{accounts: make(map[string]*domain.Account)}
}

func (m *memoryAccounts) add(acct *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *acct
	m.accounts[acct.Email] = &copy
}

func (m *memoryAccounts) get(email string) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *m.accounts[email]
	return &copy
}

func (m *memoryAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[email]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	copy := *acct
	return &copy, nil
}

func (m *memoryAccounts) SetOTP(_ context.Context, email, code string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[email]
	if !ok {
		return fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	acct.OTPCode = &code
	acct.OTPExpiry = &expiry
	acct.VerificationToken = nil
	acct.VerificationTokenExpiry = nil
	return nil
}

func (m *memoryAccounts) ClearOTP(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[email]
	if !ok || acct.OTPCode == nil || *acct.OTPCode != code {
		return false, nil
	}
	acct.OTPCode = nil
	acct.OTPExpiry = nil
	return true, nil
}

func testAccount(email string) *domain.Account {
	return &domain.Account{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Alice",
		LastName:  "Example",
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
	}
}

func TestIssueSetsPairAndClearsLink(t *testing.T) {
	store := newMemoryAccounts()
	acct := testAccount("a@x.com")
	tok := "old-link-token"
	exp := time.Now().Add(time.Hour)
	acct.VerificationToken = &tok
	acct.VerificationTokenExpiry = &exp
	store.add(acct)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store,
		WithClock(func() time.Time { return now }),
		WithGenerator(func() string { return "000042" }),
	)

	loaded := store.get("a@x.com")
	code, err := m.Issue(context.Background(), loaded)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if code != "000042" {
		t.Fatalf("unexpected code %q", code)
	}

	stored := store.get("a@x.com")
	if stored.OTPCode == nil || *stored.OTPCode != "000042" {
		t.Fatalf("code not persisted: %+v", stored)
	}
	if stored.OTPExpiry == nil || !stored.OTPExpiry.Equal(now.Add(TTL)) {
		t.Fatalf("expiry not persisted as now+TTL: %+v", stored.OTPExpiry)
	}
	if stored.VerificationToken != nil || stored.VerificationTokenExpiry != nil {
		t.Fatalf("verification-link pair should be cleared: %+v", stored)
	}
}

func TestIssueConflictWhileCodeLive(t *testing.T) {
	store := newMemoryAccounts()
	store.add(testAccount("a@x.com"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store, WithClock(func() time.Time { return now }))

	acct := store.get("a@x.com")
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	// 90 seconds in: 3 minutes and 30 seconds of the window remain.
	now = now.Add(90 * time.Second)
	_, err := m.Issue(context.Background(), acct)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	want := "An OTP has already been sent. Please try again after 3 minute(s) and 30 second(s)."
	if got := err.Error(); !strings.HasPrefix(got, want) {
		t.Fatalf("conflict message %q does not state remaining wait %q", got, want)
	}
}

func TestIssueAfterExpirySucceeds(t *testing.T) {
	store := newMemoryAccounts()
	store.add(testAccount("a@x.com"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store, WithClock(func() time.Time { return now }))

	acct := store.get("a@x.com")
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	now = now.Add(TTL + time.Second)
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("reissue after expiry: %v", err)
	}
}

func TestRedeemLifecycle(t *testing.T) {
	store := newMemoryAccounts()
	store.add(testAccount("a@x.com"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store,
		WithClock(func() time.Time { return now }),
		WithGenerator(func() string { return "000002" }),
	)

	if _, err := m.Redeem(context.Background(), "a@x.com", "000002"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("redeem with no code outstanding: expected ErrNotFound, got %v", err)
	}

	acct := store.get("a@x.com")
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Redeem(context.Background(), "a@x.com", "000001"); !errors.Is(err, domain.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	// A failed candidate must leave the code in place.
	if stored := store.get("a@x.com"); stored.OTPCode == nil {
		t.Fatalf("mismatch should not clear the code")
	}

	redeemed, err := m.Redeem(context.Background(), "a@x.com", "000002")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	// Snapshot is as read before clearing; identity fields must be intact.
	if redeemed.Email != "a@x.com" || redeemed.FirstName != "Alice" {
		t.Fatalf("unexpected snapshot: %+v", redeemed)
	}

	stored := store.get("a@x.com")
	if stored.OTPCode != nil || stored.OTPExpiry != nil {
		t.Fatalf("redeem should clear the pair: %+v", stored)
	}

	// Single use: the same code again is gone.
	if _, err := m.Redeem(context.Background(), "a@x.com", "000002"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second redeem, got %v", err)
	}
}

func TestRedeemExpired(t *testing.T) {
	store := newMemoryAccounts()
	store.add(testAccount("a@x.com"))

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(store,
		WithClock(func() time.Time { return now }),
		WithGenerator(func() string { return "000002" }),
	)

	acct := store.get("a@x.com")
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(TTL + time.Second)
	if _, err := m.Redeem(context.Background(), "a@x.com", "000002"); !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestRedeemUnknownAccount(t *testing.T) {
	m := NewManager(newMemoryAccounts())
	if _, err := m.Redeem(context.Background(), "nobody@x.com", "000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPairInvariant(t *testing.T) {
	store := newMemoryAccounts()
	store.add(testAccount("a@x.com"))
	m := NewManager(store, WithGenerator(func() string { return "123456" }))

	check := func(step string) {
		acct := store.get("a@x.com")
		if (acct.OTPCode == nil) != (acct.OTPExpiry == nil) {
			t.Fatalf("%s: pair out of lockstep: %+v", step, acct)
		}
	}

	check("initial")
	acct := store.get("a@x.com")
	if _, err := m.Issue(context.Background(), acct); err != nil {
		t.Fatalf("issue: %v", err)
	}
	check("after issue")
	if _, err := m.Redeem(context.Background(), "a@x.com", "123456"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	check("after redeem")
}
