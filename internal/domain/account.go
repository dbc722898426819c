package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountID = uuid.UUID

type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// Account is the durable credential record. The OTP pair and the
// verification-token pair are each set or cleared together; store
// operations never touch one column of a pair without the other.
type Account struct {
	ID              AccountID `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email           string    `gorm:"type:citext;uniqueIndex:ux_accounts_email" db:"email" json:"email"`
	PasswordHash    string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	FirstName       string    `gorm:"type:text;not null" db:"first_name" json:"firstName"`
	LastName        string    `gorm:"type:text;not null" db:"last_name" json:"lastName"`
	Role            Role      `gorm:"type:text;not null;default:'USER'" db:"role" json:"role"`
	Status          Status    `gorm:"type:text;not null;default:'ACTIVE'" db:"status" json:"status"`
	IsEmailVerified bool      `gorm:"not null;default:false" db:"is_email_verified" json:"isEmailVerified"`

	OTPCode   *string    `gorm:"type:varchar(6)" db:"otp_code" json:"-"`
	OTPExpiry *time.Time `db:"otp_expiry" json:"-"`

	VerificationToken       *string    `gorm:"type:text" db:"verification_token" json:"-"`
	VerificationTokenExpiry *time.Time `db:"verification_token_expiry" json:"-"`

	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Account) TableName() string { return "accounts" }

// Name returns the display name used in token claims and mail.
func (a *Account) Name() string { return a.FirstName + " " + a.LastName }

func (a *Account) IsBlocked() bool { return a.Status == StatusBlocked }

// SecretMechanism identifies which verification secret is outstanding.
type SecretMechanism string

const (
	SecretOTP  SecretMechanism = "otp"
	SecretLink SecretMechanism = "link"
)

// LiveSecret is the tagged view of the outstanding verification secret.
// The store sets at most one pair at a time, so the columns collapse into a
// single mechanism/value/expiry triple here.
type LiveSecret struct {
	Mechanism SecretMechanism
	Value     string
	Expiry    time.Time
}

// LiveSecret returns the unexpired verification secret, if one is
// outstanding.
func (a *Account) LiveSecret(now time.Time) (LiveSecret, bool) {
	if a.OTPCode != nil && a.OTPExpiry != nil && now.Before(*a.OTPExpiry) {
		return LiveSecret{Mechanism: SecretOTP, Value: *a.OTPCode, Expiry: *a.OTPExpiry}, true
	}
	if a.VerificationToken != nil && a.VerificationTokenExpiry != nil && now.Before(*a.VerificationTokenExpiry) {
		return LiveSecret{Mechanism: SecretLink, Value: *a.VerificationToken, Expiry: *a.VerificationTokenExpiry}, true
	}
	return LiveSecret{}, false
}

// HasLiveOTP reports whether an unexpired one-time code is outstanding.
func (a *Account) HasLiveOTP(now time.Time) bool {
	s, ok := a.LiveSecret(now)
	return ok && s.Mechanism == SecretOTP
}

// HasLiveVerificationToken reports whether an unexpired verification link
// token is outstanding.
func (a *Account) HasLiveVerificationToken(now time.Time) bool {
	s, ok := a.LiveSecret(now)
	return ok && s.Mechanism == SecretLink
}
