package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if role == "" || u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// seed stores a user directly, bypassing hashing.
func (r *stubUserRepo) seed(email string, role domain.Role) *domain.User {
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.Split(email, "@")[0],
		Role:      role,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	r.users[u.ID] = cloneUser(u)
	return u
}

func principalOf(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// ---------------------------------------------------------------------------
// Permit types
// ---------------------------------------------------------------------------

type stubPermitTypeRepo struct {
	types map[string]*domain.PermitType
}

func newStubPermitTypeRepo(types ...*domain.PermitType) *stubPermitTypeRepo {
	r := &stubPermitTypeRepo{types: make(map[string]*domain.PermitType)}
	for _, pt := range types {
		r.types[pt.ID] = pt
	}
	return r
}

func (r *stubPermitTypeRepo) List(_ context.Context, category string) ([]*domain.PermitType, error) {
	var out []*domain.PermitType
	for _, pt := range r.types {
		if category == "" || pt.Category == category {
			out = append(out, pt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubPermitTypeRepo) FindByID(_ context.Context, id string) (*domain.PermitType, error) {
	pt, ok := r.types[id]
	if !ok {
		return nil, domain.ErrPermitTypeNotFound
	}
	return pt, nil
}

func (r *stubPermitTypeRepo) FindBySlug(_ context.Context, slug string) (*domain.PermitType, error) {
	for _, pt := range r.types {
		if pt.Slug == slug {
			return pt, nil
		}
	}
	return nil, domain.ErrPermitTypeNotFound
}

func (r *stubPermitTypeRepo) UpsertBySlug(_ context.Context, pt *domain.PermitType) error {
	for id, existing := range r.types {
		if existing.Slug == pt.Slug {
			clone := *pt
			clone.ID = id
			r.types[id] = &clone
			return nil
		}
	}
	clone := *pt
	r.types[pt.ID] = &clone
	return nil
}

// ---------------------------------------------------------------------------
// Property records
// ---------------------------------------------------------------------------

type stubPropertyRepo struct {
	records map[string]*domain.PropertyRecord // keyed by parcel id
}

func newStubPropertyRepo() *stubPropertyRepo {
	return &stubPropertyRepo{records: make(map[string]*domain.PropertyRecord)}
}

func (r *stubPropertyRepo) Search(_ context.Context, query string) ([]*domain.PropertyRecord, error) {
	var out []*domain.PropertyRecord
	for _, rec := range r.records {
		if query == "" || rec.ParcelID == query ||
			strings.Contains(strings.ToLower(rec.Address), strings.ToLower(query)) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (r *stubPropertyRepo) UpsertByParcelID(_ context.Context, rec *domain.PropertyRecord) error {
	clone := *rec
	if existing, ok := r.records[rec.ParcelID]; ok {
		clone.ID = existing.ID
	}
	r.records[rec.ParcelID] = &clone
	return nil
}

func buildingPermit() *domain.PermitType {
	return &domain.PermitType{
		ID:         "pt-building",
		Name:       "Building Permit Application",
		Slug:       "building-permit",
		Category:   onlineApplicationsCategory,
		FormSchema: DefaultFormSchema(),
	}
}

func validFormData() map[string]any {
	return map[string]any{
		"applicantName": "Ada Applicant",
		"address":       "1 Main Street, Quincy, MA",
		"description":   "Rear deck",
		"contactPhone":  "617-555-0100",
		"contactEmail":  "ada@example.com",
	}
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

type stubAppRepo struct {
	mu        sync.Mutex
	apps      map[string]*domain.Application
	updateErr error
}

func newStubAppRepo() *stubAppRepo {
	return &stubAppRepo{apps: make(map[string]*domain.Application)}
}

func cloneApp(a *domain.Application) *domain.Application {
	clone := *a
	clone.FormData = make(map[string]any, len(a.FormData))
	for k, v := range a.FormData {
		clone.FormData[k] = v
	}
	return &clone
}

func (r *stubAppRepo) Create(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *stubAppRepo) FindByID(_ context.Context, id string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return cloneApp(a), nil
}

func (r *stubAppRepo) List(_ context.Context, f ports.ListApplicationsFilter) ([]*domain.Application, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Application
	for _, a := range r.apps {
		if f.ApplicantID != "" && a.ApplicantID != f.ApplicantID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.PermitTypeID != "" && a.PermitTypeID != f.PermitTypeID {
			continue
		}
		out = append(out, cloneApp(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Limit > 0 {
		start := (max(f.Page, 1) - 1) * f.Limit
		if start > len(out) {
			start = len(out)
		}
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (r *stubAppRepo) Update(_ context.Context, app *domain.Application, expected domain.ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	current, ok := r.apps[app.ID]
	if !ok || current.Status != expected {
		return domain.ErrConcurrentUpdate
	}
	r.apps[app.ID] = cloneApp(app)
	return nil
}

func (r *stubAppRepo) CreatedBetween(_ context.Context, from, to time.Time) ([]*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Application
	for _, a := range r.apps {
		if !a.CreatedAt.Before(from) && a.CreatedAt.Before(to) {
			out = append(out, cloneApp(a))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

type stubDocRepo struct {
	docs      map[string]*domain.Document
	createErr error
}

func newStubDocRepo() *stubDocRepo {
	return &stubDocRepo{docs: make(map[string]*domain.Document)}
}

func (r *stubDocRepo) Create(_ context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *stubDocRepo) FindByID(_ context.Context, id string) (*domain.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDocRepo) filter(keep func(*domain.Document) bool) []*domain.Document {
	var out []*domain.Document
	for _, d := range r.docs {
		if keep(d) {
			clone := *d
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *stubDocRepo) ListPublic(_ context.Context, category string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool {
		return d.IsPublic() && (category == "" || d.Category == category)
	}), nil
}

func (r *stubDocRepo) SearchPublic(_ context.Context, name string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool {
		return d.IsPublic() && strings.Contains(strings.ToLower(d.Name), strings.ToLower(name))
	}), nil
}

func (r *stubDocRepo) PublicCategories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, d := range r.docs {
		if d.IsPublic() && d.Category != "" && !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *stubDocRepo) ListByApplication(_ context.Context, applicationID string) ([]*domain.Document, error) {
	return r.filter(func(d *domain.Document) bool { return d.ApplicationID == applicationID }), nil
}

type memStorage struct {
	files map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (s *memStorage) Save(_ context.Context, originalName string, content io.Reader) (string, int64, error) {
	b, err := io.ReadAll(content)
	if err != nil {
		return "", 0, err
	}
	path := uuid.NewString() + filepath.Ext(originalName)
	s.files[path] = b
	return path, int64(len(b)), nil
}

func (s *memStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	b, ok := s.files[path]
	if !ok {
		return nil, domain.ErrFileMissing
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memStorage) Remove(_ context.Context, path string) error {
	delete(s.files, path)
	return nil
}

// ---------------------------------------------------------------------------
// Token denylist and observer
// ---------------------------------------------------------------------------

type stubDenylist struct {
	revoked  map[string]time.Duration
	checkErr error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: make(map[string]time.Duration)}
}

func (d *stubDenylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.revoked[tokenID] = ttl
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if d.checkErr != nil {
		return false, d.checkErr
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}

type recordingObserver struct {
	created     int
	transitions []string
	documents   int
	logins      []bool
}

func (o *recordingObserver) ApplicationCreated(*domain.Application) { o.created++ }

func (o *recordingObserver) StatusChanged(app *domain.Application, from domain.ApplicationStatus) {
	o.transitions = append(o.transitions, string(from)+"->"+string(app.Status))
}

func (o *recordingObserver) DocumentStored(*domain.Document) { o.documents++ }

func (o *recordingObserver) LoginAttempt(success bool) { o.logins = append(o.logins, success) }
