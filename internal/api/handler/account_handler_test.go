package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/vikram-software/portal/internal/core/domain"
	"github.com/vikram-software/portal/internal/core/ports"
)

type stubAccountService struct {
	ports.AccountService
	listFn   func(ctx context.Context, filter ports.AccountFilter) ([]*domain.Account, error)
	updateFn func(ctx context.Context, actor domain.Actor, id string, u ports.AccountUpdate) (*domain.Account, error)
}

func (s *stubAccountService) List(ctx context.Context, filter ports.AccountFilter) ([]*domain.Account, error) {
	return s.listFn(ctx, filter)
}

func (s *stubAccountService) Update(ctx context.Context, actor domain.Actor, id string, u ports.AccountUpdate) (*domain.Account, error) {
	return s.updateFn(ctx, actor, id, u)
}

func TestAccountHandler_List_Filters(t *testing.T) {
	var got ports.AccountFilter
	stub := &stubAccountService{
		listFn: func(ctx context.Context, filter ports.AccountFilter) ([]*domain.Account, error) {
			got = filter
			return []*domain.Account{{ID: "emp_1"}}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/users?role=employee&active=false", "", "admin_1", domain.RoleAdmin)
	if err := NewAccountHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Role != domain.RoleEmployee || got.Active == nil || *got.Active {
		t.Fatalf("unexpected filter: %+v", got)
	}
	if body := decode(t, rec); body.Count == nil || *body.Count != 1 {
		t.Fatalf("expected count 1")
	}

	c, _ = newContext(http.MethodGet, "/users?active=maybe", "", "admin_1", domain.RoleAdmin)
	var ve *domain.ValidationError
	if err := NewAccountHandler(stub).List(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for active, got %v", err)
	}
}

func TestAccountHandler_ListByRole_OnlyActive(t *testing.T) {
	stub := &stubAccountService{
		listFn: func(ctx context.Context, filter ports.AccountFilter) ([]*domain.Account, error) {
			if filter.Role != domain.RoleClient || filter.Active == nil || !*filter.Active {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			return nil, nil
		},
	}

	c, _ := newContext(http.MethodGet, "/users/role/client", "", "emp_1", domain.RoleEmployee)
	c.SetParamNames("role")
	c.SetParamValues("client")
	if err := NewAccountHandler(stub).ListByRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAccountHandler_Update_PassesRoleChange(t *testing.T) {
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, actor domain.Actor, id string, u ports.AccountUpdate) (*domain.Account, error) {
			if u.Role == nil || *u.Role != domain.RoleAdmin {
				t.Fatalf("expected role change, got %+v", u)
			}
			return nil, domain.ErrForbidden
		},
	}

	c, _ := newContext(http.MethodPut, "/users/emp_1", `{"role":"admin"}`, "emp_1", domain.RoleEmployee)
	c.SetParamNames("id")
	c.SetParamValues("emp_1")
	if err := NewAccountHandler(stub).Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
