package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// AccountService manages accounts. Accounts are deactivated, never removed.
type AccountService struct {
	repo ports.AccountRepository
	log  zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, log zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, log: log}
}

func (s *AccountService) List(ctx context.Context, filter ports.AccountFilter) ([]*domain.Account, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, domain.NewValidationError("role", "role must be one of: admin employee client")
	}
	return s.repo.List(ctx, filter)
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) Create(ctx context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	if !in.Role.Valid() {
		return nil, domain.NewValidationError("role", "role must be one of: admin employee client")
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength))
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        domain.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		CompanyName:  in.CompanyName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.ID).Str("role", string(created.Role)).Msg("account created")
	return created, nil
}

// Update applies profile edits. Accounts may edit themselves; only administrators
// may edit others or change role and active flag.
func (s *AccountService) Update(ctx context.Context, actor domain.Actor, id string, update ports.AccountUpdate) (*domain.Account, error) {
	if !actor.IsAdmin() {
		if actor.ID != id {
			return nil, domain.ErrForbidden
		}
		if update.Role != nil || update.IsActive != nil {
			return nil, domain.ErrForbidden
		}
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, domain.NewValidationError("role", "role must be one of: admin employee client")
	}
	if update.Email != nil {
		normalized := domain.NormalizeEmail(*update.Email)
		update.Email = &normalized
	}
	if actor.ID == id && update.IsActive != nil && !*update.IsActive {
		return nil, errOwnStatus()
	}

	return s.repo.Update(ctx, id, update)
}

// ToggleStatus flips the active flag of another account.
func (s *AccountService) ToggleStatus(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	if actor.ID == id {
		return nil, errOwnStatus()
	}
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := !account.IsActive
	updated, err := s.repo.Update(ctx, id, ports.AccountUpdate{IsActive: &active})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", id).Bool("active", active).Msg("account status toggled")
	return updated, nil
}

// Deactivate soft-deletes an account by clearing its active flag.
func (s *AccountService) Deactivate(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	if actor.ID == id {
		return nil, errOwnStatus()
	}
	inactive := false
	updated, err := s.repo.Update(ctx, id, ports.AccountUpdate{IsActive: &inactive})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", id).Msg("account deactivated")
	return updated, nil
}

// errOwnStatus refuses a caller deactivating or toggling its own account, which
// would lock the caller out.
func errOwnStatus() error {
	return &domain.StateConflictError{Entity: "account", Reason: "cannot change its own status", Current: "active"}
}
