package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

// UserService is the admin-only account management surface.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log, now: time.Now}
}

func (s *UserService) List(ctx context.Context, actor domain.Principal, role string) ([]*domain.User, error) {
	if _, err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	var r domain.Role
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		r = parsed
	}
	return s.users.List(ctx, r)
}

func (s *UserService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	if _, err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// Create is the only path that may assign a role other than APPLICANT.
func (s *UserService) Create(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	admin, err := s.requireAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	role := domain.RoleApplicant
	if in.Role != "" {
		if role, err = domain.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}

	user, err := newUser(ctx, s.users, newUserParams{
		Email:         in.Email,
		Password:      in.Password,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Phone:         in.Phone,
		CompanyName:   in.CompanyName,
		LicenseNumber: in.LicenseNumber,
		Role:          role,
		Now:           s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(role)).Str("admin_id", admin.ID).Msg("user created by admin")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if _, err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if validate.Var(email, "required,email") != nil {
			return nil, domain.NewValidationError(map[string]string{"email": "email must be a valid email"})
		}
		if email != user.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, domain.ErrUserExists
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, fmt.Errorf("check email: %w", err)
			}
			user.Email = email
		}
	}
	if in.Role != nil {
		role, err := domain.ParseRole(*in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		return nil, domain.NewValidationError(map[string]string{"firstName": "firstName is required"})
	}
	setString(&user.FirstName, in.FirstName)
	setString(&user.LastName, in.LastName)
	setString(&user.Phone, in.Phone)
	setString(&user.CompanyName, in.CompanyName)
	setString(&user.LicenseNumber, in.LicenseNumber)
	if in.Active != nil {
		user.Active = *in.Active
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SetActive(ctx context.Context, actor domain.Principal, id string, active bool) (*domain.User, error) {
	return s.Update(ctx, actor, id, ports.UpdateUserInput{Active: &active})
}

func (s *UserService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	admin, err := s.requireAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if admin.ID == id {
		return fmt.Errorf("admins cannot delete their own account: %w", domain.ErrForbidden)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("admin_id", admin.ID).Msg("user deleted")
	return nil
}

func (s *UserService) requireAdmin(ctx context.Context, actor domain.Principal) (*domain.User, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if !user.Role.Can(domain.CapManageUsers) {
		return nil, fmt.Errorf("manage users: %w", domain.ErrForbidden)
	}
	return user, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
