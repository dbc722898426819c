package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"credauth/internal/domain"
	"credauth/internal/dto"
	"credauth/internal/mail"
	"credauth/internal/observability/metrics"
	"credauth/internal/observability/middleware"
	"credauth/internal/otp"
	"credauth/internal/secret"
	"credauth/internal/service"
	"credauth/internal/store"

	"github.com/google/uuid"
)

type accountStore interface {
	Create(ctx context.Context, acct *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	SetOTP(ctx context.Context, email, code string, expiry time.Time) error
	ClearOTP(ctx context.Context, email, code string) (bool, error)
	SetVerificationToken(ctx context.Context, email, token string, expiry time.Time) error
	SetEmailVerified(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type otpManager interface {
	Issue(ctx context.Context, account *domain.Account) (string, error)
	Redeem(ctx context.Context, email, candidate string) (*domain.Account, error)
}

type AuthConfig struct {
	ClientBaseURL   string
	VerificationTTL time.Duration
}

type AuthServiceImpl struct {
	Store           accountStore
	OTP             otpManager
	PasswordService service.PasswordService
	TService        service.TokenService
	Mailer          mail.Dispatcher
	Cfg             AuthConfig

	now func() time.Time
}

func NewAuthServiceImpl(st *store.Store, pw service.PasswordService, ts service.TokenService, mailer mail.Dispatcher, cfg AuthConfig) *AuthServiceImpl {
	accounts := st.Accounts()
	return &AuthServiceImpl{
		Store:           accounts,
		OTP:             otp.NewManager(accounts),
		PasswordService: pw,
		TService:        ts,
		Mailer:          mailer,
		Cfg:             cfg,
		now:             time.Now,
	}
}

func (a *AuthServiceImpl) clock() time.Time {
	if a.now != nil {
		return a.now().UTC()
	}
	return time.Now().UTC()
}

// Register creates an Unverified account carrying a fresh verification
// secret and mails it. A dispatch failure is surfaced, but the account and
// its secret stand; the resend path recovers.
func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest) (*dto.StatusResponse, error) {
	if r.Email == "" || r.Password == "" {
		return nil, ErrEmptyCredential
	}
	if len(r.Password) < 8 {
		return nil, ErrPasswordLength
	}

	if _, err := a.Store.GetByEmail(ctx, r.Email); err == nil {
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return nil, fmt.Errorf("user already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := a.PasswordService.Hash(r.Password)
	if err != nil {
		return nil, err
	}

	now := a.clock()
	acct := &domain.Account{
		ID:           uuid.New(),
		Email:        r.Email,
		PasswordHash: hash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Role:         roleOrDefault(r.Role),
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Store.Create(ctx, acct); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	if err := a.issueAndDispatch(ctx, acct, r.VerifyBy); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("dispatch_failure").Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	slog.Info("registered account", "account_id", acct.ID, "email", acct.Email)
	return &dto.StatusResponse{Status: "pending"}, nil
}

// Login gates on password, block status, and verification. Non-SUPERADMIN
// accounts that are not yet verified get a fresh secret and a "pending"
// acknowledgment instead of a session token.
func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest) (*dto.LoginResponse, error) {
	if r.Email == "" || r.Password == "" {
		return nil, ErrEmptyCredential
	}

	acct, err := a.Store.GetByEmail(ctx, r.Email)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if !a.PasswordService.Verify(r.Password, acct.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, fmt.Errorf("password incorrect: %w", domain.ErrInvalidCredential)
	}
	if acct.IsBlocked() {
		metrics.LoginsTotal.WithLabelValues("blocked").Inc()
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	if acct.Role != domain.RoleSuperAdmin && !acct.IsEmailVerified {
		if err := a.issueAndDispatch(ctx, acct, r.VerifyBy); err != nil {
			metrics.LoginsTotal.WithLabelValues("pending_failure").Inc()
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues("pending").Inc()
		return &dto.LoginResponse{Status: "pending"}, nil
	}

	token, err := a.TService.IssueSession(ctx, acct)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &dto.LoginResponse{SessionResponse: sessionResponse(acct, token)}, nil
}

// VerifyEmail redeems the outstanding code, marks the account verified, and
// issues a session token.
func (a *AuthServiceImpl) VerifyEmail(ctx context.Context, r dto.VerifyEmailRequest) (*dto.SessionResponse, error) {
	acct, err := a.Store.GetByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if acct.IsBlocked() {
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	redeemed, err := a.OTP.Redeem(ctx, r.Email, r.OTP)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("otp", "failure").Inc()
		return nil, err
	}

	if err := a.Store.SetEmailVerified(ctx, r.Email); err != nil {
		return nil, err
	}

	token, err := a.TService.IssueSession(ctx, redeemed)
	if err != nil {
		return nil, err
	}
	metrics.VerificationsTotal.WithLabelValues("otp", "success").Inc()
	slog.Info("email verified", "account_id", redeemed.ID, "mechanism", "otp")
	return sessionResponse(redeemed, token), nil
}

// VerifyEmailByToken verifies a signed link token. The token must carry the
// verification sentinel subject, resolve to a matching non-blocked account,
// and equal the stored token verbatim (a superseded token is a replay).
func (a *AuthServiceImpl) VerifyEmailByToken(ctx context.Context, token string) (*dto.SessionResponse, error) {
	claims, err := a.TService.Verify(token)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("link", "failure").Inc()
		return nil, err
	}
	if claims.ID != secret.VerificationSubject {
		metrics.VerificationsTotal.WithLabelValues("link", "failure").Inc()
		return nil, fmt.Errorf("invalid token: %w", domain.ErrForbidden)
	}

	acct, err := a.Store.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if string(acct.Role) != claims.Role {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrForbidden)
	}
	if acct.VerificationToken == nil || *acct.VerificationToken != token {
		metrics.VerificationsTotal.WithLabelValues("link", "failure").Inc()
		return nil, fmt.Errorf("invalid token: %w", domain.ErrForbidden)
	}
	if acct.IsBlocked() {
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	if err := a.Store.SetEmailVerified(ctx, acct.Email); err != nil {
		return nil, err
	}

	sessionToken, err := a.TService.IssueSession(ctx, acct)
	if err != nil {
		return nil, err
	}
	metrics.VerificationsTotal.WithLabelValues("link", "success").Inc()
	slog.Info("email verified", "account_id", acct.ID, "mechanism", "link")
	return sessionResponse(acct, sessionToken), nil
}

// ResendVerification re-issues the verification secret for an unverified
// account, subject to the conflict-on-live-secret rule.
func (a *AuthServiceImpl) ResendVerification(ctx context.Context, r dto.ResendVerificationRequest) (*dto.StatusResponse, error) {
	if r.Email == "" {
		return nil, ErrEmptyEmail
	}
	acct, err := a.Store.GetByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if acct.IsBlocked() {
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}
	if acct.IsEmailVerified {
		return nil, fmt.Errorf("email is already verified: %w", domain.ErrInvalidState)
	}

	if err := a.issueAndDispatch(ctx, acct, r.VerifyBy); err != nil {
		return nil, err
	}
	return &dto.StatusResponse{Status: "sent"}, nil
}

// ForgetPassword issues a reset OTP and mails it. A dispatch failure runs a
// compensating clear of the just-issued pair before propagating, so the
// account never holds a secret nobody received.
func (a *AuthServiceImpl) ForgetPassword(ctx context.Context, email string) (*dto.StatusResponse, error) {
	if email == "" {
		return nil, ErrEmptyEmail
	}
	acct, err := a.Store.GetByEmail(ctx, email)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", "not_found").Inc()
		return nil, err
	}
	if acct.IsBlocked() {
		metrics.PasswordResetsTotal.WithLabelValues("request", "blocked").Inc()
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	code, err := a.OTP.Issue(ctx, acct)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", "conflict").Inc()
		return nil, err
	}

	subject, body := mail.OTPMessage(code)
	err = a.dispatch(ctx, email, "reset_otp", subject, body, func() error {
		cleared, clearErr := a.Store.ClearOTP(ctx, email, code)
		if clearErr == nil && !cleared {
			clearErr = errors.New("otp already cleared")
		}
		return clearErr
	})
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("request", "dispatch_failure").Inc()
		return nil, err
	}

	metrics.PasswordResetsTotal.WithLabelValues("request", "success").Inc()
	return &dto.StatusResponse{Status: "sent"}, nil
}

// VerifyForgotPasswordOTP redeems the reset code and trades it for a
// single-use signed reset token embedded in a redirect reference. The
// advisory window reported to the caller is tighter than the token's
// signed TTL.
func (a *AuthServiceImpl) VerifyForgotPasswordOTP(ctx context.Context, r dto.VerifyEmailRequest) (*dto.ResetRedirectResponse, error) {
	acct, err := a.Store.GetByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if acct.IsBlocked() {
		metrics.PasswordResetsTotal.WithLabelValues("redeem", "blocked").Inc()
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	redeemed, err := a.OTP.Redeem(ctx, r.Email, r.OTP)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("redeem", "failure").Inc()
		return nil, err
	}

	resetToken, err := a.TService.IssueReset(ctx, redeemed)
	if err != nil {
		return nil, err
	}

	redirect := fmt.Sprintf("%s/auth/reset-password?email=%s&token=%s",
		a.Cfg.ClientBaseURL, url.QueryEscape(redeemed.Email), url.QueryEscape(resetToken))

	metrics.PasswordResetsTotal.WithLabelValues("redeem", "success").Inc()
	return &dto.ResetRedirectResponse{RedirectURL: redirect, ExpireInMinutes: 5}, nil
}

// ResetPassword consumes a reset bearer token and stores the new password.
// Previously issued session tokens stay valid until their own expiry.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, r dto.ResetPasswordRequest, bearerToken string) (*dto.StatusResponse, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("token is missing: %w", domain.ErrForbidden)
	}
	if r.NewPassword == "" {
		return nil, ErrEmptyPassword
	}

	acct, err := a.Store.GetByEmail(ctx, r.Email)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "not_found").Inc()
		return nil, err
	}
	if acct.IsBlocked() {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "blocked").Inc()
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}

	claims, err := a.TService.Verify(bearerToken)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "bad_token").Inc()
		return nil, err
	}
	if claims.Email != r.Email {
		metrics.PasswordResetsTotal.WithLabelValues("reset", "email_mismatch").Inc()
		return nil, fmt.Errorf("you are forbidden: %w", domain.ErrForbidden)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	hash, err := a.PasswordService.Hash(r.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := a.Store.UpdatePassword(ctx, claims.Email, hash); err != nil {
		return nil, err
	}

	metrics.PasswordResetsTotal.WithLabelValues("reset", "success").Inc()
	slog.Info("password reset", "account_id", acct.ID)
	return &dto.StatusResponse{Status: "changed"}, nil
}

// ChangePassword is the authenticated path: a session bearer plus the old
// password.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, bearerToken string, r dto.ChangePasswordRequest) (*dto.StatusResponse, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("token is missing: %w", domain.ErrForbidden)
	}
	if r.OldPassword == "" || r.NewPassword == "" {
		return nil, ErrEmptyPassword
	}

	claims, err := a.TService.Verify(bearerToken)
	if err != nil {
		return nil, err
	}
	if claims.ID == secret.VerificationSubject {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrForbidden)
	}

	acct, err := a.Store.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if acct.IsBlocked() {
		return nil, fmt.Errorf("user is blocked: %w", domain.ErrForbidden)
	}
	if !a.PasswordService.Verify(r.OldPassword, acct.PasswordHash) {
		return nil, fmt.Errorf("password incorrect: %w", domain.ErrInvalidCredential)
	}

	hash, err := a.PasswordService.Hash(r.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := a.Store.UpdatePassword(ctx, acct.Email, hash); err != nil {
		return nil, err
	}
	slog.Info("password changed", "account_id", acct.ID)
	return &dto.StatusResponse{Status: "changed"}, nil
}

// issueAndDispatch issues the caller-selected verification secret and mails
// it. Issuing one mechanism clears the other's fields. The secret stays in
// place when dispatch fails; only the error is surfaced.
func (a *AuthServiceImpl) issueAndDispatch(ctx context.Context, acct *domain.Account, verifyBy string) error {
	if verifyBy == dto.VerifyByLink {
		now := a.clock()
		if acct.HasLiveVerificationToken(now) {
			wait, _ := otp.RemainingWait(*acct.VerificationTokenExpiry, now)
			return fmt.Errorf("a verification link has already been sent, please try again after %s: %w", wait, domain.ErrConflict)
		}

		token, err := a.TService.IssueVerification(ctx, acct)
		if err != nil {
			return err
		}
		expiry := now.Add(a.Cfg.VerificationTTL)
		if err := a.Store.SetVerificationToken(ctx, acct.Email, token, expiry); err != nil {
			return err
		}
		acct.VerificationToken = &token
		acct.VerificationTokenExpiry = &expiry
		acct.OTPCode = nil
		acct.OTPExpiry = nil

		link := fmt.Sprintf("%s/auth/verifyMail?token=%s", a.Cfg.ClientBaseURL, url.QueryEscape(token))
		subject, body := mail.LinkMessage(link)
		return a.dispatch(ctx, acct.Email, "verification_link", subject, body, nil)
	}

	code, err := a.OTP.Issue(ctx, acct)
	if err != nil {
		return err
	}
	subject, body := mail.OTPMessage(code)
	return a.dispatch(ctx, acct.Email, "verification_otp", subject, body, nil)
}

// dispatch sends one message and, when a compensate step is supplied, runs
// it on transport failure before surfacing domain.ErrDispatch.
func (a *AuthServiceImpl) dispatch(ctx context.Context, to, kind, subject, body string, compensate func() error) error {
	if err := a.Mailer.Send(ctx, to, subject, body); err != nil {
		metrics.MailDispatchesTotal.WithLabelValues(kind, "failure").Inc()
		slog.Error("mail dispatch failed",
			"kind", kind, "email", to, "error", err,
			"request_id", middleware.RequestIDFromContext(ctx),
			"trace_id", middleware.TraceIDFromContext(ctx))
		if compensate != nil {
			if cerr := compensate(); cerr != nil {
				slog.Error("compensation failed", "kind", kind, "email", to, "error", cerr)
			}
		}
		return fmt.Errorf("failed to send %s email: %w", kind, domain.ErrDispatch)
	}
	metrics.MailDispatchesTotal.WithLabelValues(kind, "success").Inc()
	return nil
}

func sessionResponse(acct *domain.Account, token string) *dto.SessionResponse {
	return &dto.SessionResponse{
		ID:          acct.ID.String(),
		Name:        acct.Name(),
		Email:       acct.Email,
		Role:        string(acct.Role),
		AccessToken: token,
	}
}

func roleOrDefault(role string) domain.Role {
	switch domain.Role(role) {
	case domain.RoleAdmin:
		return domain.RoleAdmin
	case domain.RoleSuperAdmin:
		return domain.RoleSuperAdmin
	default:
		return domain.RoleUser
	}
}
