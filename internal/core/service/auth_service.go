package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	defaultResetTTL = 10 * time.Minute
	resetTokenBytes = 20
)

// AuthService implements login, password management and administrator bootstrap.
type AuthService struct {
	accounts  ports.AccountRepository
	resets    ports.ResetTokenStore
	jwtSecret string
	tokenTTL  time.Duration
	resetTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	resets ports.ResetTokenStore,
	jwtSecret string,
	tokenTTL, resetTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &AuthService{
		accounts:  accounts,
		resets:    resets,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		resetTTL:  resetTTL,
		log:       log,
	}
}

// Login verifies the credentials of an active account and issues a bearer token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		s.log.Warn().Err(err).Str("account_id", account.ID).Msg("failed to record last login")
	} else {
		account.LastLogin = &now
	}

	token, err := s.generateToken(account, now)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Str("role", string(account.Role)).Msg("login")
	return &ports.LoginResult{Token: token, Account: account}, nil
}

func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, actor.ID)
}

func (s *AuthService) UpdatePassword(ctx context.Context, actor domain.Actor, current, next string) error {
	if len(next) < domain.MinPasswordLength {
		return domain.NewValidationError("newPassword", fmt.Sprintf("newpassword must be at least %d characters", domain.MinPasswordLength))
	}

	account, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.accounts.SetPasswordHash(ctx, account.ID, hash)
}

// ForgotPassword issues a single-use reset token valid for resetTTL. Only the
// token's SHA-256 digest is stored.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*ports.ForgotPasswordResult, error) {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.resets.Save(ctx, digest(token), account.ID, s.resetTTL); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("password reset requested")
	return &ports.ForgotPasswordResult{ResetToken: token}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < domain.MinPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", domain.MinPasswordLength))
	}
	if token == "" {
		return domain.ErrInvalidResetToken
	}

	accountID, err := s.resets.Consume(ctx, digest(token))
	if err != nil {
		return err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if err := s.accounts.SetPasswordHash(ctx, accountID, hash); err != nil {
		return err
	}

	s.log.Info().Str("account_id", accountID).Msg("password reset")
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no administrator exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.accounts.ExistsWithRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if email == "" || len(password) < domain.MinPasswordLength {
		return false, fmt.Errorf("bootstrap admin: email and a password of at least %d characters are required", domain.MinPasswordLength)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, err
	}

	s.log.Info().Str("account_id", created.ID).Str("email", created.Email).Msg("bootstrap admin created")
	return true, nil
}

func (s *AuthService) generateToken(account *domain.Account, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"role":  string(account.Role),
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
