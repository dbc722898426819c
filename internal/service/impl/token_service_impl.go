package impl

import (
	"context"
	"log/slog"
	"time"

	"credauth/internal/domain"
	"credauth/internal/observability/metrics"
	"credauth/internal/observability/middleware"
	"credauth/internal/secret"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenTTL is fixed by the reset protocol; the advisory window shown
// to callers is shorter (see VerifyForgotPasswordOTP).
const ResetTokenTTL = 10 * time.Minute

type TokenConfig struct {
	Issuer          string
	AccessTTL       time.Duration // session tokens
	VerificationTTL time.Duration // email-verification link tokens
	SigningKey      []byte        // HS256 secret
}

type TokenServiceImpl struct {
	cfg TokenConfig
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg}
}

func (t *TokenServiceImpl) IssueSession(ctx context.Context, account *domain.Account) (string, error) {
	tok, err := t.sign(account, account.ID.String(), t.cfg.AccessTTL)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.TokensIssuedTotal.WithLabelValues("session", result).Inc()
	if err == nil {
		reqID := middleware.RequestIDFromContext(ctx)
		traceID := middleware.TraceIDFromContext(ctx)
		slog.Info("issued session token",
			"account_id", account.ID, "email", account.Email,
			"request_id", reqID, "trace_id", traceID)
	}
	return tok, err
}

func (t *TokenServiceImpl) IssueVerification(_ context.Context, account *domain.Account) (string, error) {
	tok, err := t.sign(account, secret.VerificationSubject, t.cfg.VerificationTTL)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.TokensIssuedTotal.WithLabelValues("verification", result).Inc()
	return tok, err
}

func (t *TokenServiceImpl) IssueReset(ctx context.Context, account *domain.Account) (string, error) {
	tok, err := t.sign(account, account.ID.String(), ResetTokenTTL)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.TokensIssuedTotal.WithLabelValues("reset", result).Inc()
	if err == nil {
		slog.Info("issued reset token",
			"account_id", account.ID,
			"request_id", middleware.RequestIDFromContext(ctx),
			"trace_id", middleware.TraceIDFromContext(ctx))
	}
	return tok, err
}

func (t *TokenServiceImpl) Verify(token string) (*secret.Claims, error) {
	return secret.Verify(token, t.cfg.SigningKey)
}

func (t *TokenServiceImpl) sign(account *domain.Account, subject string, ttl time.Duration) (string, error) {
	claims := secret.Claims{
		ID:    subject,
		Name:  account.Name(),
		Email: account.Email,
		Role:  string(account.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: t.cfg.Issuer,
		},
	}
	return secret.Sign(claims, t.cfg.SigningKey, ttl)
}
