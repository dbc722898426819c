package impl

import (
	"context"
	"fmt"
	"log/slog"

	"credauth/internal/domain"
	"credauth/internal/dto"
	"credauth/internal/store"
)

type AccountServiceImpl struct {
	Store accountAdminStore
}

type accountAdminStore interface {
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	UpdateStatus(ctx context.Context, id domain.AccountID, status domain.Status) error
	UpdateRole(ctx context.Context, id domain.AccountID, role domain.Role) error
}

func NewAccountServiceImpl(st *store.Store) *AccountServiceImpl {
	return &AccountServiceImpl{Store: st.Accounts()}
}

func (s *AccountServiceImpl) GetProfile(ctx context.Context, id domain.AccountID) (*dto.ProfileResponse, error) {
	acct, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return profileResponse(acct), nil
}

// UpdateStatus is the administrative flip between ACTIVE and BLOCKED that
// every auth operation checks against.
func (s *AccountServiceImpl) UpdateStatus(ctx context.Context, id domain.AccountID, status domain.Status) (*dto.ProfileResponse, error) {
	if status != domain.StatusActive && status != domain.StatusBlocked {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrInvalidState)
	}
	if err := s.Store.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	acct, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("account status updated", "account_id", id, "status", status)
	return profileResponse(acct), nil
}

func (s *AccountServiceImpl) UpdateRole(ctx context.Context, id domain.AccountID, role domain.Role) (*dto.ProfileResponse, error) {
	switch role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidState)
	}
	if err := s.Store.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	acct, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	slog.Info("account role updated", "account_id", id, "role", role)
	return profileResponse(acct), nil
}

func profileResponse(acct *domain.Account) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:        acct.ID.String(),
		Email:     acct.Email,
		FirstName: acct.FirstName,
		LastName:  acct.LastName,
		Role:      string(acct.Role),
		Status:    string(acct.Status),
		Verified:  acct.IsEmailVerified,
	}
}
