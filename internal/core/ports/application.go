package ports

import (
	"context"
	"time"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// ListApplicationsFilter carries query parameters for listing applications.
type ListApplicationsFilter struct {
	ApplicantID  string // empty = all applicants
	Status       domain.ApplicationStatus
	PermitTypeID string
	Page         int // 1-based
	Limit        int // 0 = no limit
}

// ApplicationRepository persists applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	// List returns matching applications newest first and the total count.
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.Application, int64, error)
	// Update replaces the stored application only while its status still
	// equals expected; otherwise it returns domain.ErrConcurrentUpdate.
	Update(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) error
	// CreatedBetween returns applications with from <= createdAt < to.
	CreatedBetween(ctx context.Context, from, to time.Time) ([]*domain.Application, error)
}

// CreateApplicationInput is the payload of a new application.
type CreateApplicationInput struct {
	PermitTypeID string
	FormData     map[string]any
	Submit       bool
}

// UpdateApplicationInput carries every field an update may touch. Nil means
// "leave unchanged". Applicants may set FormData and Submit; staff may set
// Status and StaffNotes.
type UpdateApplicationInput struct {
	FormData   map[string]any
	Submit     *bool
	Status     *string
	StaffNotes *string
}

// ListApplicationsInput carries staff list parameters.
type ListApplicationsInput struct {
	Status       string
	PermitTypeID string
	Page         int
	Limit        int
}

// ListApplicationsResult is a page of applications.
type ListApplicationsResult struct {
	Items      []*domain.Application
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ApplicationService is the application lifecycle manager. Every call
// receives the caller explicitly.
type ApplicationService interface {
	Create(ctx context.Context, actor domain.Principal, in CreateApplicationInput) (*domain.Application, error)
	Get(ctx context.Context, actor domain.Principal, id string) (*domain.Application, error)
	ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Application, error)
	ListAll(ctx context.Context, actor domain.Principal, in ListApplicationsInput) (*ListApplicationsResult, error)
	Update(ctx context.Context, actor domain.Principal, id string, in UpdateApplicationInput) (*domain.Application, error)
	Submit(ctx context.Context, actor domain.Principal, id string) (*domain.Application, error)
}
