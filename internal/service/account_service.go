package service

import (
	"context"

	"credauth/internal/domain"
	"credauth/internal/dto"
)

// AccountService covers profile reads and the administrative status/role
// mutations. Blocking an account here is what every AuthService operation
// checks against.
type AccountService interface {
	GetProfile(ctx context.Context, id domain.AccountID) (*dto.ProfileResponse, error)
	UpdateStatus(ctx context.Context, id domain.AccountID, status domain.Status) (*dto.ProfileResponse, error)
	UpdateRole(ctx context.Context, id domain.AccountID, role domain.Role) (*dto.ProfileResponse, error)
}
