package domain

import (
	"strings"
	"time"
)

// ApplicationStatus represents the lifecycle state of a permit application.
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "DRAFT"
	StatusSubmitted   ApplicationStatus = "SUBMITTED"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusApproved    ApplicationStatus = "APPROVED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// reviewTransitions are the status changes staff may apply.
// DRAFT -> SUBMITTED belongs to the applicant and is not listed here.
var reviewTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted:   {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusApproved, StatusRejected},
}

// ParseApplicationStatus converts a case-insensitive status name.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch st := ApplicationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// IsTerminal reports whether no further status change is possible.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanReviewTo reports whether staff may move an application from s to next.
func (s ApplicationStatus) CanReviewTo(next ApplicationStatus) bool {
	for _, allowed := range reviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application is the central workflow aggregate.
type Application struct {
	ID           string            `json:"id"`
	ApplicantID  string            `json:"applicantId"`
	PermitTypeID string            `json:"permitTypeId"`
	Status       ApplicationStatus `json:"status"`
	FormData     map[string]any    `json:"formData"`
	ReviewerID   string            `json:"reviewerId,omitempty"`
	StaffNotes   string            `json:"staffNotes,omitempty"`
	SubmittedAt  *time.Time        `json:"submittedAt,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Submit moves a draft to SUBMITTED and stamps the submission time.
func (a *Application) Submit(now time.Time) error {
	if a.Status != StatusDraft {
		return ErrNotEditable
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = &now
	a.UpdatedAt = now
	return nil
}

// Review applies a staff status change. Reaching a terminal state stamps the
// review time; every review change records the reviewer.
func (a *Application) Review(next ApplicationStatus, reviewerID string, now time.Time) error {
	if !a.Status.CanReviewTo(next) {
		return ErrInvalidTransition
	}
	a.Status = next
	a.ReviewerID = reviewerID
	if next.IsTerminal() {
		a.ReviewedAt = &now
	}
	a.UpdatedAt = now
	return nil
}
