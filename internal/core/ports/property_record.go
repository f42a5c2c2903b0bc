package ports

import (
	"context"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// PropertyRecordRepository persists property records.
type PropertyRecordRepository interface {
	// Search matches address substrings case-insensitively or parcel ids
	// exactly. An empty query returns every record. Results are ordered by
	// address.
	Search(ctx context.Context, query string) ([]*domain.PropertyRecord, error)
	// UpsertByParcelID inserts rec or refreshes the record with the same
	// parcel id, keeping its existing ID.
	UpsertByParcelID(ctx context.Context, rec *domain.PropertyRecord) error
}

// PropertyRecordService is the public property lookup.
type PropertyRecordService interface {
	Search(ctx context.Context, query string) ([]*domain.PropertyRecord, error)
}
