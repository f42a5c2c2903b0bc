package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

// dummyHash is compared against when the email is unknown so that login
// takes the same time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("permit-portal-dummy"), bcrypt.DefaultCost)

// AuthService implements registration, login and session refresh.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenService
	observer Observer
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, observer Observer, log zerolog.Logger) *AuthService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &AuthService{users: users, tokens: tokens, observer: observer, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Role != "" {
		role, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		if role != domain.RoleApplicant {
			return nil, fmt.Errorf("register as %s: %w", role, domain.ErrForbidden)
		}
	}

	first, last := in.FirstName, in.LastName
	if first == "" {
		first, last = domain.SplitName(in.Name)
	}

	user, err := newUser(ctx, s.users, newUserParams{
		Email:         in.Email,
		Password:      in.Password,
		FirstName:     first,
		LastName:      last,
		Phone:         in.Phone,
		CompanyName:   in.CompanyName,
		LicenseNumber: in.LicenseNumber,
		Role:          domain.RoleApplicant,
		Now:           s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return s.result(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.observer.LoginAttempt(false)
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.observer.LoginAttempt(false)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		s.observer.LoginAttempt(false)
		return nil, domain.ErrAccountDisabled
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLoginAt = &now
	}
	s.observer.LoginAttempt(true)

	return s.result(user)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Refresh re-issues a token for the identity of a still-valid token. The role
// is reloaded from the credential store.
func (s *AuthService) Refresh(ctx context.Context, token string) (*ports.AuthResult, error) {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}
	return s.result(user)
}

func (s *AuthService) Logout(ctx context.Context, token string) {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.log.Warn().Err(err).Str("user_id", claims.UserID).Msg("failed to revoke token")
	}
}

func (s *AuthService) result(user *domain.User) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		Token:       token,
		ExpiresAt:   expiresAt,
		User:        user,
		Permissions: user.Role.Permissions(),
	}, nil
}

type newUserParams struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Phone         string
	CompanyName   string
	LicenseNumber string
	Role          domain.Role
	Now           time.Time
}

// newUser validates, hashes and persists an account. Shared by public
// registration and admin creation.
func newUser(ctx context.Context, users ports.UserRepository, p newUserParams) (*domain.User, error) {
	email := domain.NormalizeEmail(p.Email)
	fields := map[string]string{}
	if validate.Var(email, "required,email") != nil {
		fields["email"] = "email must be a valid email"
	}
	switch {
	case len(p.Password) < minPasswordLength:
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	case len(p.Password) > maxPasswordLength:
		fields["password"] = fmt.Sprintf("password must be at most %d characters", maxPasswordLength)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		fields["name"] = "name is required"
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}

	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  string(hash),
		FirstName:     strings.TrimSpace(p.FirstName),
		LastName:      strings.TrimSpace(p.LastName),
		Phone:         p.Phone,
		CompanyName:   p.CompanyName,
		LicenseNumber: p.LicenseNumber,
		Role:          p.Role,
		Active:        true,
		CreatedAt:     p.Now,
		UpdatedAt:     p.Now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

const (
	minPasswordLength = 6
	// maxPasswordLength is the bcrypt input limit in bytes.
	maxPasswordLength = 72
)
