// Package otp owns the one-time-code lifecycle: conflict-checked issuance
// and single-use redemption against the credential store.
package otp

import (
	"context"
	"fmt"
	"time"

	"credauth/internal/domain"
	"credauth/internal/secret"
)

// TTL is the lifetime of an issued code.
const TTL = 5 * time.Minute

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// SetOTP writes the code/expiry pair and clears any pending
	// verification-link pair in the same update.
	SetOTP(ctx context.Context, email, code string, expiry time.Time) error
	// ClearOTP nulls the code/expiry pair only while the stored code still
	// equals code; it reports whether a row was cleared.
	ClearOTP(ctx context.Context, email, code string) (bool, error)
}

type Manager struct {
	store    accountStore
	generate func() string
	now      func() time.Time
}

type Option func(*Manager)

// WithClock overrides the time source used for conflict and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGenerator overrides the code source.
func WithGenerator(generate func() string) Option {
	return func(m *Manager) { m.generate = generate }
}

func NewManager(store accountStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		generate: secret.GenerateCode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue generates and persists a fresh code for the account. It fails with
// domain.ErrConflict while a non-expired code is outstanding; the message
// states the remaining wait. On success the account's in-memory secret
// fields mirror the stored state.
func (m *Manager) Issue(ctx context.Context, account *domain.Account) (string, error) {
	now := m.now().UTC()
	if account.HasLiveOTP(now) {
		return "", fmt.Errorf("%s: %w", StatusMessage(*account.OTPExpiry, now), domain.ErrConflict)
	}

	code := m.generate()
	expiry := now.Add(TTL)
	if err := m.store.SetOTP(ctx, account.Email, code, expiry); err != nil {
		return "", err
	}

	account.OTPCode = &code
	account.OTPExpiry = &expiry
	account.VerificationToken = nil
	account.VerificationTokenExpiry = nil
	return code, nil
}

// Redeem consumes the account's outstanding code. It fails with
// domain.ErrNotFound when no code is active, domain.ErrExpired past the
// stored expiry, and domain.ErrMismatch on a wrong candidate. On success the
// pair is cleared in a single conditional update and the account is returned
// as read before clearing, so callers keep the pre-clear identity fields.
func (m *Manager) Redeem(ctx context.Context, email, candidate string) (*domain.Account, error) {
	account, err := m.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if account.OTPCode == nil || account.OTPExpiry == nil {
		return nil, fmt.Errorf("no OTP request found for this email: %w", domain.ErrNotFound)
	}
	if m.now().UTC().After(*account.OTPExpiry) {
		return nil, fmt.Errorf("OTP has expired, please request a new one: %w", domain.ErrExpired)
	}
	if candidate != *account.OTPCode {
		return nil, fmt.Errorf("invalid OTP, please try again: %w", domain.ErrMismatch)
	}

	cleared, err := m.store.ClearOTP(ctx, email, *account.OTPCode)
	if err != nil {
		return nil, err
	}
	if !cleared {
		// A concurrent redeem won the conditional update.
		return nil, fmt.Errorf("no OTP request found for this email: %w", domain.ErrNotFound)
	}
	return account, nil
}
