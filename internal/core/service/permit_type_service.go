package service

import (
	"context"
	"strings"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type PermitTypeService struct {
	repo ports.PermitTypeRepository
}

func NewPermitTypeService(repo ports.PermitTypeRepository) *PermitTypeService {
	return &PermitTypeService{repo: repo}
}

func (s *PermitTypeService) List(ctx context.Context, category string) ([]*domain.PermitType, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *PermitTypeService) Get(ctx context.Context, id string) (*domain.PermitType, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *PermitTypeService) GetBySlug(ctx context.Context, slug string) (*domain.PermitType, error) {
	return s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}
