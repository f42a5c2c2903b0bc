package ports

import (
	"context"
	"io"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// DocumentRepository persists document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	FindByID(ctx context.Context, id string) (*domain.Document, error)
	// ListPublic returns library documents ordered by name, filtered by
	// category when it is non-empty.
	ListPublic(ctx context.Context, category string) ([]*domain.Document, error)
	// SearchPublic matches library document names case-insensitively.
	SearchPublic(ctx context.Context, nameContains string) ([]*domain.Document, error)
	PublicCategories(ctx context.Context) ([]string, error)
	ListByApplication(ctx context.Context, applicationID string) ([]*domain.Document, error)
}

// FileStorage stores raw file content under opaque relative paths.
type FileStorage interface {
	// Save writes content under a new collision-free name derived from
	// originalName's extension and returns the relative path.
	Save(ctx context.Context, originalName string, content io.Reader) (path string, size int64, err error)
	// Open returns domain.ErrFileMissing when path does not exist.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// UploadInput is a file received from a client.
type UploadInput struct {
	Name     string // display name; defaults to Filename
	Category string
	Filename string
	MimeType string
	Content  []byte
}

// DocumentContent is an opened document. Callers must close Body.
type DocumentContent struct {
	Document *domain.Document
	Body     io.ReadCloser
}

// DocumentService is the document attachment store.
type DocumentService interface {
	StorePublic(ctx context.Context, actor domain.Principal, in UploadInput) (*domain.Document, error)
	Attach(ctx context.Context, actor domain.Principal, applicationID string, in UploadInput) (*domain.Document, error)
	ListForApplication(ctx context.Context, actor domain.Principal, applicationID string) ([]*domain.Document, error)
	// Fetch serves library documents to anyone; attachments need the owner
	// or staff. actor may be the zero Principal for anonymous callers.
	Fetch(ctx context.Context, actor domain.Principal, id string) (*DocumentContent, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Document, error)
	Search(ctx context.Context, name string) ([]*domain.Document, error)
	Categories(ctx context.Context) ([]string, error)
}
