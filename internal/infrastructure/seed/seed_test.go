package seed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

const fixtureYAML = `
accounts:
  - first_name: Ada
    email: Ada@Vikram.com
    password: secret1
    role: admin
  - first_name: Carl
    email: carl@acme.example
    password: secret1
    role: client
service_requests:
  - client_email: carl@acme.example
    service_name: Web Development
    description: New storefront
    budget: 900
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Accounts, 2)
	require.Len(t, f.ServiceRequests, 1)
	assert.Equal(t, "admin", f.Accounts[0].Role)
	require.NotNil(t, f.ServiceRequests[0].Budget)
	assert.Equal(t, 900.0, *f.ServiceRequests[0].Budget)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":          "  ",
		"unknown field":  "accounts:\n  - email: a@b.c\n    password: secret1\n    role: admin\n    nickname: x\n",
		"bad role":       "accounts:\n  - email: a@b.c\n    password: secret1\n    role: owner\n",
		"short password": "accounts:\n  - email: a@b.c\n    password: abc\n    role: client\n",
		"duplicate":      "accounts:\n  - email: a@b.c\n    password: secret1\n    role: client\n  - email: A@b.c\n    password: secret1\n    role: client\n",
		"bad timeline":   "service_requests:\n  - client_email: a@b.c\n    service_name: Web\n    timeline: asap\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Accounts, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// memAccounts backs the account lookups; memCreator writes into the same map.
type memAccounts struct {
	ports.AccountRepository
	byEmail map[string]*domain.Account
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

type memCreator struct {
	store *memAccounts
}

func (c memCreator) Create(_ context.Context, in ports.CreateAccountInput) (*domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	if _, ok := c.store.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	a := &domain.Account{ID: fmt.Sprintf("acc_%d", len(c.store.byEmail)+1), Email: email, Role: in.Role}
	c.store.byEmail[email] = a
	return a, nil
}

type memRequests struct {
	ports.ServiceRequestRepository
	created []*domain.ServiceRequest
}

func (m *memRequests) Create(_ context.Context, r *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	m.created = append(m.created, r)
	return r, nil
}

func TestSeeder_Apply(t *testing.T) {
	f, err := Parse([]byte(fixtureYAML))
	require.NoError(t, err)

	accounts := &memAccounts{byEmail: map[string]*domain.Account{
		"ada@vikram.com": {ID: "existing", Email: "ada@vikram.com", Role: domain.RoleAdmin},
	}}
	requests := &memRequests{}
	seeder := NewSeeder(memCreator{accounts}, accounts, requests, zerolog.Nop())

	res, err := seeder.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, 1, res.AccountsCreated)
	assert.Equal(t, 1, res.AccountsSkipped)
	assert.Equal(t, 1, res.RequestsCreated)

	require.Len(t, requests.created, 1)
	req := requests.created[0]
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, domain.TimelineNormal, req.Timeline)
	assert.Equal(t, accounts.byEmail["carl@acme.example"].ID, req.ClientID)
	assert.WithinDuration(t, time.Now(), req.CreatedAt, time.Minute)
}

func TestSeeder_Apply_UnknownClient(t *testing.T) {
	f, err := Parse([]byte("service_requests:\n  - client_email: ghost@acme.example\n    service_name: Web\n"))
	require.NoError(t, err)

	accounts := &memAccounts{byEmail: map[string]*domain.Account{}}
	_, err = NewSeeder(memCreator{accounts}, accounts, &memRequests{}, zerolog.Nop()).Apply(context.Background(), f)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
