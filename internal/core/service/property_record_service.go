package service

import (
	"context"
	"strings"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type PropertyRecordService struct {
	repo ports.PropertyRecordRepository
}

func NewPropertyRecordService(repo ports.PropertyRecordRepository) *PropertyRecordService {
	return &PropertyRecordService{repo: repo}
}

// Search matches an address fragment or an exact parcel id. A blank query
// lists every record.
func (s *PropertyRecordService) Search(ctx context.Context, query string) ([]*domain.PropertyRecord, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}
