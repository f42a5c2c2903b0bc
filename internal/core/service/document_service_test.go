package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

type docFixture struct {
	svc       *DocumentService
	docs      *stubDocRepo
	files     *memStorage
	obs       *recordingObserver
	applicant *domain.User
	other     *domain.User
	staff     *domain.User
	app       *domain.Application
}

func newDocFixture(t *testing.T, maxBytes int64) *docFixture {
	t.Helper()
	users := newStubUserRepo()
	apps := newStubAppRepo()
	f := &docFixture{
		docs:      newStubDocRepo(),
		files:     newMemStorage(),
		obs:       &recordingObserver{},
		applicant: users.seed("a@example.com", domain.RoleApplicant),
		other:     users.seed("b@example.com", domain.RoleApplicant),
		staff:     users.seed("s@example.com", domain.RoleReviewer),
	}
	f.app = &domain.Application{ID: "app-1", ApplicantID: f.applicant.ID, Status: domain.StatusDraft}
	_ = apps.Create(context.Background(), f.app)
	f.svc = NewDocumentService(f.docs, apps, users, f.files, maxBytes, f.obs, zerolog.Nop())
	return f
}

func TestDocumentService_StorePublic(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()

	doc, err := f.svc.StorePublic(ctx, principalOf(f.staff), ports.UploadInput{
		Name:     "Fee Schedule",
		Category: " Forms ",
		Filename: "../../etc/fees.pdf",
		Content:  pdfBytes,
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if doc.Category != "Forms" || !doc.IsPublic() {
		t.Fatalf("expected public document in Forms, got %+v", doc)
	}
	if doc.MimeType != "application/pdf" {
		t.Fatalf("expected sniffed pdf mime type, got %q", doc.MimeType)
	}
	if doc.Size != int64(len(pdfBytes)) || doc.UploadedBy != f.staff.ID {
		t.Fatalf("unexpected metadata: %+v", doc)
	}
	if len(f.files.files) != 1 || f.obs.documents != 1 {
		t.Fatalf("expected one stored file and one event")
	}

	content, err := f.svc.Fetch(ctx, domain.Principal{}, doc.ID)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer content.Body.Close()
	body, _ := io.ReadAll(content.Body)
	if string(body) != string(pdfBytes) {
		t.Fatalf("fetched body mismatch")
	}

	cats, _ := f.svc.Categories(ctx)
	if len(cats) != 1 || cats[0] != "Forms" {
		t.Fatalf("unexpected categories %v", cats)
	}
	byCat, _ := f.svc.ListByCategory(ctx, "Forms")
	found, _ := f.svc.Search(ctx, "fee")
	all, _ := f.svc.Search(ctx, "  ")
	if len(byCat) != 1 || len(found) != 1 || len(all) != 1 {
		t.Fatalf("listing mismatch: %d %d %d", len(byCat), len(found), len(all))
	}
}

func TestDocumentService_StorePublicRequiresStaff(t *testing.T) {
	f := newDocFixture(t, 0)

	_, err := f.svc.StorePublic(context.Background(), principalOf(f.applicant), ports.UploadInput{Filename: "x.pdf", Content: pdfBytes})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.files.files) != 0 {
		t.Fatalf("no file should be written")
	}
}

func TestDocumentService_Attach(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()

	doc, err := f.svc.Attach(ctx, principalOf(f.applicant), f.app.ID, ports.UploadInput{
		Filename: "site-plan.pdf",
		Category: "ignored",
		MimeType: "application/pdf",
		Content:  pdfBytes,
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if doc.ApplicationID != f.app.ID || doc.Category != "" || doc.IsPublic() {
		t.Fatalf("attachment must be private to the application: %+v", doc)
	}
	if doc.Name != "site-plan.pdf" {
		t.Fatalf("expected name to default to filename, got %q", doc.Name)
	}

	if _, err := f.svc.Attach(ctx, principalOf(f.staff), f.app.ID, ports.UploadInput{Filename: "memo.txt", Content: []byte("memo")}); err != nil {
		t.Fatalf("staff attach: %v", err)
	}

	list, err := f.svc.ListForApplication(ctx, principalOf(f.applicant), f.app.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list for application: %d %v", len(list), err)
	}

	if _, err := f.svc.Fetch(ctx, principalOf(f.staff), doc.ID); err != nil {
		t.Fatalf("staff fetch attachment: %v", err)
	}
	if _, err := f.svc.Fetch(ctx, principalOf(f.other), doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other applicant fetch: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Fetch(ctx, domain.Principal{}, doc.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous fetch: expected unauthorized, got %v", err)
	}

	public, _ := f.svc.ListByCategory(ctx, "")
	if len(public) != 0 {
		t.Fatalf("attachments leaked into public library: %v", public)
	}
}

func TestDocumentService_AttachForbiddenForOthers(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()
	other := principalOf(f.other)

	if _, err := f.svc.Attach(ctx, other, f.app.ID, ports.UploadInput{Filename: "x.pdf", Content: pdfBytes}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("attach: expected forbidden, got %v", err)
	}
	if _, err := f.svc.ListForApplication(ctx, other, f.app.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("list: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Attach(ctx, other, "missing", ports.UploadInput{Filename: "x.pdf", Content: pdfBytes}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDocumentService_SizeLimits(t *testing.T) {
	f := newDocFixture(t, 8)
	ctx := context.Background()
	staff := principalOf(f.staff)

	if _, err := f.svc.StorePublic(ctx, staff, ports.UploadInput{Filename: "empty.pdf"}); !errors.Is(err, domain.ErrEmptyFile) {
		t.Fatalf("expected empty file error, got %v", err)
	}
	if _, err := f.svc.StorePublic(ctx, staff, ports.UploadInput{Filename: "big.pdf", Content: pdfBytes}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected too large error, got %v", err)
	}
	if _, err := f.svc.StorePublic(ctx, staff, ports.UploadInput{Filename: "ok.txt", Content: []byte("12345678")}); err != nil {
		t.Fatalf("file at the limit must be accepted: %v", err)
	}
}

func TestDocumentService_RemovesFileWhenRecordFails(t *testing.T) {
	f := newDocFixture(t, 0)
	f.docs.createErr = errors.New("db down")

	_, err := f.svc.StorePublic(context.Background(), principalOf(f.staff), ports.UploadInput{Filename: "x.pdf", Content: pdfBytes})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(f.files.files) != 0 {
		t.Fatalf("orphaned file left behind")
	}
	if f.obs.documents != 0 {
		t.Fatalf("failed store must not be observed")
	}
}

func TestDocumentService_FetchMissing(t *testing.T) {
	f := newDocFixture(t, 0)
	ctx := context.Background()

	if _, err := f.svc.Fetch(ctx, domain.Principal{}, "nope"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected document not found, got %v", err)
	}

	doc, _ := f.svc.StorePublic(ctx, principalOf(f.staff), ports.UploadInput{Filename: "x.pdf", Content: pdfBytes})
	f.files.files = map[string][]byte{}
	if _, err := f.svc.Fetch(ctx, domain.Principal{}, doc.ID); !errors.Is(err, domain.ErrFileMissing) {
		t.Fatalf("expected file missing, got %v", err)
	}
}
