package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const (
	defaultMaxUploadBytes = 10 << 20
	octetStream           = "application/octet-stream"
)

// DocumentService stores uploaded files and their metadata. File content
// lives in FileStorage; only the relative path is persisted.
type DocumentService struct {
	docs     ports.DocumentRepository
	apps     ports.ApplicationRepository
	users    ports.UserRepository
	files    ports.FileStorage
	maxBytes int64
	observer Observer
	log      zerolog.Logger
	now      func() time.Time
}

func NewDocumentService(
	docs ports.DocumentRepository,
	apps ports.ApplicationRepository,
	users ports.UserRepository,
	files ports.FileStorage,
	maxBytes int64,
	observer Observer,
	log zerolog.Logger,
) *DocumentService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &DocumentService{
		docs:     docs,
		apps:     apps,
		users:    users,
		files:    files,
		maxBytes: maxBytes,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// StorePublic adds a document to the shared library.
func (s *DocumentService) StorePublic(ctx context.Context, actor domain.Principal, in ports.UploadInput) (*domain.Document, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if !user.Role.Can(domain.CapManageDocuments) {
		return nil, domain.ErrStaffOnly
	}
	return s.store(ctx, user, "", in)
}

// Attach stores a file against an application owned by actor, or any
// application when actor is staff.
func (s *DocumentService) Attach(ctx context.Context, actor domain.Principal, applicationID string, in ports.UploadInput) (*domain.Document, error) {
	user, app, err := s.authorizeApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	in.Category = ""
	return s.store(ctx, user, app.ID, in)
}

func (s *DocumentService) ListForApplication(ctx context.Context, actor domain.Principal, applicationID string) ([]*domain.Document, error) {
	if _, _, err := s.authorizeApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return s.docs.ListByApplication(ctx, applicationID)
}

// Fetch opens the stored file. Attachments are only served to the owning
// applicant and staff. A record whose file has gone missing yields
// domain.ErrFileMissing.
func (s *DocumentService) Fetch(ctx context.Context, actor domain.Principal, id string) (*ports.DocumentContent, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.IsPublic() {
		if _, _, err := s.authorizeApplication(ctx, actor, doc.ApplicationID); err != nil {
			return nil, err
		}
	}
	body, err := s.files.Open(ctx, doc.FilePath)
	if err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID).Str("path", doc.FilePath).Msg("document file unavailable")
		return nil, err
	}
	return &ports.DocumentContent{Document: doc, Body: body}, nil
}

func (s *DocumentService) ListByCategory(ctx context.Context, category string) ([]*domain.Document, error) {
	return s.docs.ListPublic(ctx, strings.TrimSpace(category))
}

func (s *DocumentService) Search(ctx context.Context, name string) ([]*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.docs.ListPublic(ctx, "")
	}
	return s.docs.SearchPublic(ctx, name)
}

func (s *DocumentService) Categories(ctx context.Context) ([]string, error) {
	return s.docs.PublicCategories(ctx)
}

func (s *DocumentService) authorizeApplication(ctx context.Context, actor domain.Principal, applicationID string) (*domain.User, *domain.Application, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, nil, err
	}
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Role.Can(domain.CapViewAllApplications) && app.ApplicantID != user.ID {
		return nil, nil, domain.ErrNotOwner
	}
	return user, app, nil
}

func (s *DocumentService) store(ctx context.Context, uploader *domain.User, applicationID string, in ports.UploadInput) (*domain.Document, error) {
	if len(in.Content) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	filename := filepath.Base(strings.TrimSpace(in.Filename))
	if filename == "." || filename == string(filepath.Separator) {
		filename = ""
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = filename
	}

	mimeType := strings.TrimSpace(in.MimeType)
	if mimeType == "" || mimeType == octetStream {
		mimeType = mimetype.Detect(in.Content).String()
	}

	path, size, err := s.files.Save(ctx, filename, bytes.NewReader(in.Content))
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	if name == "" {
		name = path
	}

	doc := &domain.Document{
		ID:            uuid.NewString(),
		Name:          name,
		Category:      strings.TrimSpace(in.Category),
		FilePath:      path,
		MimeType:      mimeType,
		Size:          size,
		ApplicationID: applicationID,
		UploadedBy:    uploader.ID,
		UploadedAt:    s.now().UTC(),
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		if rmErr := s.files.Remove(ctx, path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove orphaned file")
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	s.observer.DocumentStored(doc)
	s.log.Info().
		Str("document_id", doc.ID).
		Str("application_id", applicationID).
		Str("mime_type", mimeType).
		Int64("size", size).
		Msg("document stored")
	return doc, nil
}
