// Package seed loads fixture accounts and service requests from YAML.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

// Fixture models a seed file.
type Fixture struct {
	Accounts        []AccountFixture `yaml:"accounts"`
	ServiceRequests []RequestFixture `yaml:"service_requests"`
}

type AccountFixture struct {
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	Role        string `yaml:"role"`
	Phone       string `yaml:"phone"`
	CompanyName string `yaml:"company_name"`
}

// RequestFixture is a pending service request owned by the account with ClientEmail.
type RequestFixture struct {
	ClientEmail string   `yaml:"client_email"`
	ServiceName string   `yaml:"service_name"`
	Description string   `yaml:"description"`
	Budget      *float64 `yaml:"budget"`
	Timeline    string   `yaml:"timeline"`
}

// Parse decodes and validates a fixture payload.
func Parse(data []byte) (*Fixture, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("seed: fixture is empty")
	}
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decode fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the fixture at path.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f *Fixture) validate() error {
	emails := make(map[string]bool, len(f.Accounts))
	for i, a := range f.Accounts {
		if strings.TrimSpace(a.Email) == "" {
			return fmt.Errorf("seed: accounts[%d]: email is required", i)
		}
		if !domain.Role(a.Role).Valid() {
			return fmt.Errorf("seed: accounts[%d]: unknown role %q", i, a.Role)
		}
		if len(a.Password) < domain.MinPasswordLength {
			return fmt.Errorf("seed: accounts[%d]: password must be at least %d characters", i, domain.MinPasswordLength)
		}
		email := domain.NormalizeEmail(a.Email)
		if emails[email] {
			return fmt.Errorf("seed: accounts[%d]: duplicate email %s", i, email)
		}
		emails[email] = true
	}
	for i, r := range f.ServiceRequests {
		if r.ServiceName == "" || r.ClientEmail == "" {
			return fmt.Errorf("seed: service_requests[%d]: service_name and client_email are required", i)
		}
		switch domain.Timeline(r.Timeline) {
		case "", domain.TimelineUrgent, domain.TimelineNormal, domain.TimelineFlexible:
		default:
			return fmt.Errorf("seed: service_requests[%d]: unknown timeline %q", i, r.Timeline)
		}
	}
	return nil
}

// AccountCreator creates accounts with hashed passwords.
type AccountCreator interface {
	Create(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error)
}

// Result summarises what a seed run changed.
type Result struct {
	AccountsCreated int
	AccountsSkipped int
	RequestsCreated int
}

// Seeder applies fixtures. Accounts whose email already exists are skipped.
type Seeder struct {
	creator  AccountCreator
	accounts ports.AccountRepository
	requests ports.ServiceRequestRepository
	log      zerolog.Logger
}

func NewSeeder(creator AccountCreator, accounts ports.AccountRepository, requests ports.ServiceRequestRepository, log zerolog.Logger) *Seeder {
	return &Seeder{creator: creator, accounts: accounts, requests: requests, log: log}
}

func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}

	for _, a := range f.Accounts {
		_, err := s.creator.Create(ctx, ports.CreateAccountInput{
			FirstName:   a.FirstName,
			LastName:    a.LastName,
			Email:       a.Email,
			Password:    a.Password,
			Role:        domain.Role(a.Role),
			Phone:       a.Phone,
			CompanyName: a.CompanyName,
		})
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			res.AccountsSkipped++
			s.log.Debug().Str("email", a.Email).Msg("seed account exists, skipping")
		case err != nil:
			return res, fmt.Errorf("seed account %s: %w", a.Email, err)
		default:
			res.AccountsCreated++
		}
	}

	for _, r := range f.ServiceRequests {
		client, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(r.ClientEmail))
		if err != nil {
			return res, fmt.Errorf("seed request %q: client %s: %w", r.ServiceName, r.ClientEmail, err)
		}
		if client.Role != domain.RoleClient {
			return res, fmt.Errorf("seed request %q: %s is not a client", r.ServiceName, r.ClientEmail)
		}

		timeline := domain.Timeline(r.Timeline)
		if timeline == "" {
			timeline = domain.TimelineNormal
		}
		now := time.Now().UTC()
		if _, err := s.requests.Create(ctx, &domain.ServiceRequest{
			ClientID:    client.ID,
			ServiceName: r.ServiceName,
			Description: r.Description,
			Status:      domain.RequestPending,
			Budget:      r.Budget,
			Timeline:    timeline,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return res, fmt.Errorf("seed request %q: %w", r.ServiceName, err)
		}
		res.RequestsCreated++
	}

	s.log.Info().
		Int("accounts_created", res.AccountsCreated).
		Int("accounts_skipped", res.AccountsSkipped).
		Int("requests_created", res.RequestsCreated).
		Msg("seed applied")
	return res, nil
}
