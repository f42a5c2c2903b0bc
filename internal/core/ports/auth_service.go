package ports

import (
	"context"
	"time"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// RegisterInput carries the public self-registration fields. Name is split
// into first and last name when FirstName is empty.
type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	FirstName     string
	LastName      string
	Phone         string
	CompanyName   string
	LicenseNumber string
	// Role may only be empty or APPLICANT on the public path.
	Role string
}

// AuthResult is returned by every operation that issues a token.
type AuthResult struct {
	Token       string
	ExpiresAt   time.Time
	User        *domain.User
	Permissions []string
}

// AuthService is the auth gateway.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	Refresh(ctx context.Context, token string) (*AuthResult, error)
	// Logout never fails; revocation is best effort.
	Logout(ctx context.Context, token string)
}
