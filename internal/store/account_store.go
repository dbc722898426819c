package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountStore struct{ db *gorm.DB }

func (s *Store) Accounts() *AccountStore { return &AccountStore{db: s.DB} }

func (a *AccountStore) Create(ctx context.Context, acct *domain.Account) error {
	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	return a.db.WithContext(ctx).Create(acct).Error
}

func (a *AccountStore) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	var acct domain.Account
	if err := a.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &acct, nil
}

func (a *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acct domain.Account
	if err := a.db.WithContext(ctx).First(&acct, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
		}
		return nil, err
	}
	return &acct, nil
}

// SetOTP writes the code/expiry pair and clears the verification-link pair
// in one UPDATE, so at most one secret mechanism is live at any point.
func (a *AccountStore) SetOTP(ctx context.Context, email, code string, expiry time.Time) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"otp_code":                  code,
			"otp_expiry":                expiry,
			"verification_token":        nil,
			"verification_token_expiry": nil,
		}).Error
}

// ClearOTP nulls the pair only while the stored code still equals code.
// The condition makes redemption single-use under concurrent calls.
func (a *AccountStore) ClearOTP(ctx context.Context, email, code string) (bool, error) {
	res := a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ? AND otp_code = ?", email, code).
		Updates(map[string]interface{}{
			"otp_code":   nil,
			"otp_expiry": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetVerificationToken writes the token/expiry pair and clears the OTP pair
// in the same UPDATE.
func (a *AccountStore) SetVerificationToken(ctx context.Context, email, token string, expiry time.Time) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"verification_token":        token,
			"verification_token_expiry": expiry,
			"otp_code":                  nil,
			"otp_expiry":                nil,
		}).Error
}

// SetEmailVerified marks the account verified and retires both secret pairs.
func (a *AccountStore) SetEmailVerified(ctx context.Context, email string) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"is_email_verified":         true,
			"otp_code":                  nil,
			"otp_expiry":                nil,
			"verification_token":        nil,
			"verification_token_expiry": nil,
		}).Error
}

func (a *AccountStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash).Error
}

func (a *AccountStore) UpdateStatus(ctx context.Context, id domain.AccountID, status domain.Status) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (a *AccountStore) UpdateRole(ctx context.Context, id domain.AccountID, role domain.Role) error {
	return a.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Update("role", role).Error
}
