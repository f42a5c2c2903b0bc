package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ApplicationService enforces the application lifecycle and who may drive it.
type ApplicationService struct {
	apps        ports.ApplicationRepository
	users       ports.UserRepository
	permitTypes ports.PermitTypeRepository
	observer    Observer
	log         zerolog.Logger
	now         func() time.Time
}

func NewApplicationService(
	apps ports.ApplicationRepository,
	users ports.UserRepository,
	permitTypes ports.PermitTypeRepository,
	observer Observer,
	log zerolog.Logger,
) *ApplicationService {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ApplicationService{
		apps:        apps,
		users:       users,
		permitTypes: permitTypes,
		observer:    observer,
		log:         log,
		now:         time.Now,
	}
}

// Create stores a new application as DRAFT, or SUBMITTED when in.Submit is set.
func (s *ApplicationService) Create(ctx context.Context, actor domain.Principal, in ports.CreateApplicationInput) (*domain.Application, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if !user.Role.Can(domain.CapSubmitApplications) {
		return nil, fmt.Errorf("create application: %w", domain.ErrForbidden)
	}

	pt, err := s.permitTypes.FindByID(ctx, in.PermitTypeID)
	if err != nil {
		return nil, err
	}

	formData := in.FormData
	if formData == nil {
		formData = map[string]any{}
	}

	now := s.now().UTC()
	app := &domain.Application{
		ID:           uuid.NewString(),
		ApplicantID:  user.ID,
		PermitTypeID: pt.ID,
		Status:       domain.StatusDraft,
		FormData:     formData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Submit {
		if err := validateFormData(pt.FormSchema, formData); err != nil {
			return nil, err
		}
		if err := app.Submit(now); err != nil {
			return nil, err
		}
	}

	if err := s.apps.Create(ctx, app); err != nil {
		s.log.Error().Err(err).Msg("failed to create application")
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.observer.ApplicationCreated(app)
	s.log.Info().
		Str("application_id", app.ID).
		Str("applicant_id", user.ID).
		Str("permit_type", pt.Slug).
		Str("status", string(app.Status)).
		Msg("application created")
	return app, nil
}

// Get returns an application visible to actor: staff see all, others only
// their own.
func (s *ApplicationService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.Application, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Role.Can(domain.CapViewAllApplications) && app.ApplicantID != user.ID {
		return nil, domain.ErrNotOwner
	}
	return app, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Application, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	items, _, err := s.apps.List(ctx, ports.ListApplicationsFilter{ApplicantID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return items, nil
}

// ListAll is the staff queue across all applicants.
func (s *ApplicationService) ListAll(ctx context.Context, actor domain.Principal, in ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	if !user.Role.Can(domain.CapViewAllApplications) {
		return nil, domain.ErrStaffOnly
	}

	filter := ports.ListApplicationsFilter{
		PermitTypeID: in.PermitTypeID,
		Page:         in.Page,
		Limit:        in.Limit,
	}
	if in.Status != "" {
		st, err := domain.ParseApplicationStatus(in.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	items, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListApplicationsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// Update dispatches on the caller's role. Staff change status and notes;
// applicants, and staff on applications they own, edit form data and submit
// their own drafts.
func (s *ApplicationService) Update(ctx context.Context, actor domain.Principal, id string, in ports.UpdateApplicationInput) (*domain.Application, error) {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return nil, err
	}
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := app.Status
	now := s.now().UTC()
	if reviewsAs(user, app, in) {
		err = s.applyReview(app, user, in, now)
	} else {
		err = s.applyApplicantEdit(ctx, app, user, in, now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.apps.Update(ctx, app, from); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
		return nil, fmt.Errorf("update application: %w", err)
	}

	if app.Status != from {
		s.observer.StatusChanged(app, from)
		s.log.Info().
			Str("application_id", app.ID).
			Str("from", string(from)).
			Str("to", string(app.Status)).
			Str("actor_id", user.ID).
			Msg("application status changed")
	}
	return app, nil
}

// Submit moves the caller's draft to SUBMITTED.
func (s *ApplicationService) Submit(ctx context.Context, actor domain.Principal, id string) (*domain.Application, error) {
	submit := true
	return s.Update(ctx, actor, id, ports.UpdateApplicationInput{Submit: &submit})
}

// reviewsAs reports whether the update is a staff review. Staff editing an
// application they own themselves, without review fields, act as its applicant.
func reviewsAs(user *domain.User, app *domain.Application, in ports.UpdateApplicationInput) bool {
	if !user.Role.IsStaff() {
		return false
	}
	ownEdit := app.ApplicantID == user.ID && in.Status == nil && in.StaffNotes == nil
	return !ownEdit
}

func (s *ApplicationService) applyReview(app *domain.Application, staff *domain.User, in ports.UpdateApplicationInput, now time.Time) error {
	if in.FormData != nil || in.Submit != nil {
		return fmt.Errorf("staff cannot modify form data: %w", domain.ErrForbidden)
	}
	if in.Status == nil && in.StaffNotes == nil {
		return domain.ErrEmptyUpdate
	}

	if in.Status != nil {
		next, err := domain.ParseApplicationStatus(*in.Status)
		if err != nil {
			return err
		}
		if err := app.Review(next, staff.ID, now); err != nil {
			return fmt.Errorf("%w (from %s to %s)", err, app.Status, next)
		}
	}
	if in.StaffNotes != nil {
		app.StaffNotes = *in.StaffNotes
		app.UpdatedAt = now
	}
	return nil
}

func (s *ApplicationService) applyApplicantEdit(ctx context.Context, app *domain.Application, user *domain.User, in ports.UpdateApplicationInput, now time.Time) error {
	if app.ApplicantID != user.ID {
		return domain.ErrNotOwner
	}
	if in.Status != nil || in.StaffNotes != nil {
		return domain.ErrStaffOnly
	}
	if app.Status != domain.StatusDraft {
		return domain.ErrNotEditable
	}
	submit := in.Submit != nil && *in.Submit
	if in.FormData == nil && !submit {
		return domain.ErrEmptyUpdate
	}

	if in.FormData != nil {
		app.FormData = in.FormData
		app.UpdatedAt = now
	}
	if submit {
		pt, err := s.permitTypes.FindByID(ctx, app.PermitTypeID)
		if err != nil {
			return err
		}
		if err := validateFormData(pt.FormSchema, app.FormData); err != nil {
			return err
		}
		return app.Submit(now)
	}
	return nil
}

// resolveActor loads the caller's account. A principal whose account no
// longer exists is treated as unauthenticated.
func resolveActor(ctx context.Context, users ports.UserRepository, actor domain.Principal) (*domain.User, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnknownPrincipal
	}
	user, err := users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownPrincipal
		}
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	if !user.Active {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}
