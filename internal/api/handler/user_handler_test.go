package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type stubUserService struct {
	listFn      func(ctx context.Context, actor domain.Principal, role string) ([]*domain.User, error)
	getFn       func(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
	createFn    func(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error)
	updateFn    func(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error)
	setActiveFn func(ctx context.Context, actor domain.Principal, id string, active bool) (*domain.User, error)
	deleteFn    func(ctx context.Context, actor domain.Principal, id string) error
}

func (s *stubUserService) List(ctx context.Context, actor domain.Principal, role string) ([]*domain.User, error) {
	return s.listFn(ctx, actor, role)
}

func (s *stubUserService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubUserService) Create(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubUserService) Update(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubUserService) SetActive(ctx context.Context, actor domain.Principal, id string, active bool) (*domain.User, error) {
	return s.setActiveFn(ctx, actor, id, active)
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	return s.deleteFn(ctx, actor, id)
}

var admin = &domain.Principal{UserID: "admin-1", Role: domain.RoleAdmin}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, _ domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
			if in.Role != "REVIEWER" || in.FirstName != "Rita" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.User{ID: "u2", Email: in.Email, Role: domain.RoleReviewer}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/users",
		`{"email":"rita@example.com","password":"secret1","firstName":"Rita","role":"REVIEWER"}`, admin)

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestUserHandler_Create_RequiresRole(t *testing.T) {
	c, _ := newJSONContext(http.MethodPost, "/users",
		`{"email":"rita@example.com","password":"secret1","firstName":"Rita"}`, admin)

	err := NewUserHandler(&stubUserService{}).Create(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["role"] != "role is required" {
		t.Fatalf("expected role validation error, got %v", err)
	}
}

func TestUserHandler_Update_ValidatesEmailWhenPresent(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, _ domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Email != nil || in.Phone == nil || *in.Phone != "555-0100" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.User{ID: id}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodPut, "/users/u2", `{"phone":"555-0100"}`, admin)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := h.Update(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("update: %v (%d)", err, rec.Code)
	}

	c, _ = newJSONContext(http.MethodPut, "/users/u2", `{"email":"not-an-email"}`, admin)
	if err := h.Update(c); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestUserHandler_SetActive(t *testing.T) {
	stub := &stubUserService{
		setActiveFn: func(_ context.Context, _ domain.Principal, id string, active bool) (*domain.User, error) {
			if id != "u2" || active {
				t.Fatalf("unexpected args %s %v", id, active)
			}
			return &domain.User{ID: id, Active: active}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodPut, "/users/u2/active", `{"active":false}`, admin)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := h.SetActive(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("set active: %v (%d)", err, rec.Code)
	}

	c, _ = newJSONContext(http.MethodPut, "/users/u2/active", `{}`, admin)
	if err := h.SetActive(c); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected missing active flag to be rejected, got %v", err)
	}
}

func TestUserHandler_ListAndDelete(t *testing.T) {
	var deleted string
	stub := &stubUserService{
		listFn: func(_ context.Context, _ domain.Principal, role string) ([]*domain.User, error) {
			if role != "ADMIN" {
				t.Fatalf("unexpected role filter %q", role)
			}
			return []*domain.User{{ID: "admin-1"}}, nil
		},
		deleteFn: func(_ context.Context, _ domain.Principal, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newJSONContext(http.MethodGet, "/users?role=ADMIN", "", admin)
	if err := h.List(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("list: %v (%d)", err, rec.Code)
	}

	c, rec = newJSONContext(http.MethodDelete, "/users/u2", "", admin)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := h.Delete(c); err != nil || rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %v (%d)", err, rec.Code)
	}
	if deleted != "u2" {
		t.Fatalf("expected u2 deleted, got %q", deleted)
	}
}
