package ports

import (
	"context"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// CreateUserInput is the admin-only account creation payload.
type CreateUserInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Phone         string
	CompanyName   string
	LicenseNumber string
	Role          string
}

// UpdateUserInput carries optional profile changes. Nil means unchanged.
type UpdateUserInput struct {
	Email         *string
	FirstName     *string
	LastName      *string
	Phone         *string
	CompanyName   *string
	LicenseNumber *string
	Role          *string
	Active        *bool
}

// UserService is the admin user-management surface.
type UserService interface {
	List(ctx context.Context, actor domain.Principal, role string) ([]*domain.User, error)
	Get(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
	Create(ctx context.Context, actor domain.Principal, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor domain.Principal, id string, in UpdateUserInput) (*domain.User, error)
	SetActive(ctx context.Context, actor domain.Principal, id string, active bool) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
}

// StatisticsService aggregates application activity for dashboards.
type StatisticsService interface {
	Statistics(ctx context.Context, actor domain.Principal, timeRange string) (*domain.Statistics, error)
	Recent(ctx context.Context, actor domain.Principal, limit int) ([]*domain.Application, error)
}
