package service

import (
	"context"

	"credauth/internal/domain"
	"credauth/internal/secret"
)

// TokenService issues and checks the signed tokens this core hands out.
// All three flavors share one signing mechanism; they differ in subject and
// TTL only.
type TokenService interface {
	// IssueSession binds a token to the account's real identity.
	IssueSession(ctx context.Context, account *domain.Account) (string, error)
	// IssueVerification binds a token to the verification sentinel subject.
	IssueVerification(ctx context.Context, account *domain.Account) (string, error)
	// IssueReset binds a short-lived password-reset token to the account.
	IssueReset(ctx context.Context, account *domain.Account) (string, error)
	Verify(token string) (*secret.Claims, error)
}
