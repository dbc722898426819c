package service

import (
	"context"

	"credauth/internal/dto"
)

// AuthService coordinates registration, login gating, email verification,
// and the password reset protocol.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.StatusResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyEmail(ctx context.Context, req dto.VerifyEmailRequest) (*dto.SessionResponse, error)
	VerifyEmailByToken(ctx context.Context, token string) (*dto.SessionResponse, error)
	ResendVerification(ctx context.Context, req dto.ResendVerificationRequest) (*dto.StatusResponse, error)

	ForgetPassword(ctx context.Context, email string) (*dto.StatusResponse, error)
	VerifyForgotPasswordOTP(ctx context.Context, req dto.VerifyEmailRequest) (*dto.ResetRedirectResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest, bearerToken string) (*dto.StatusResponse, error)
	ChangePassword(ctx context.Context, bearerToken string, req dto.ChangePasswordRequest) (*dto.StatusResponse, error)
}
