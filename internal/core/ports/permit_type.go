package ports

import (
	"context"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// PermitTypeRepository persists the permit catalog.
type PermitTypeRepository interface {
	// List returns permit types ordered by name, filtered by category when set.
	List(ctx context.Context, category string) ([]*domain.PermitType, error)
	FindByID(ctx context.Context, id string) (*domain.PermitType, error)
	FindBySlug(ctx context.Context, slug string) (*domain.PermitType, error)
	// UpsertBySlug inserts pt or refreshes the entry with the same slug,
	// keeping its existing ID.
	UpsertBySlug(ctx context.Context, pt *domain.PermitType) error
}

// PermitTypeService exposes the read-only catalog.
type PermitTypeService interface {
	List(ctx context.Context, category string) ([]*domain.PermitType, error)
	Get(ctx context.Context, id string) (*domain.PermitType, error)
	GetBySlug(ctx context.Context, slug string) (*domain.PermitType, error)
}
