package domain

import (
	"errors"
	"testing"
	"time"
)

func TestApplicationStatus_CanReviewTo(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{StatusSubmitted, StatusUnderReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusUnderReview, StatusApproved, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusUnderReview, StatusUnderReview, false},
		{StatusDraft, StatusUnderReview, false},
		{StatusDraft, StatusApproved, false},
		{StatusApproved, StatusRejected, false},
		{StatusRejected, StatusApproved, false},
		{StatusSubmitted, StatusDraft, false},
		{StatusUnderReview, StatusSubmitted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanReviewTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseApplicationStatus(t *testing.T) {
	st, err := ParseApplicationStatus(" under_review ")
	if err != nil || st != StatusUnderReview {
		t.Fatalf("unexpected result: %q %v", st, err)
	}
	if _, err := ParseApplicationStatus("ARCHIVED"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestApplication_Submit(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	app := &Application{Status: StatusDraft}

	if err := app.Submit(now); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if app.Status != StatusSubmitted {
		t.Fatalf("expected SUBMITTED, got %s", app.Status)
	}
	if app.SubmittedAt == nil || !app.SubmittedAt.Equal(now) {
		t.Fatalf("submittedAt not stamped: %v", app.SubmittedAt)
	}

	if err := app.Submit(now.Add(time.Minute)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state on resubmit, got %v", err)
	}
	if !app.SubmittedAt.Equal(now) {
		t.Fatalf("resubmit must not move submittedAt")
	}
}

func TestApplication_Review(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	app := &Application{Status: StatusSubmitted}

	if err := app.Review(StatusUnderReview, "staff-1", now); err != nil {
		t.Fatalf("review: %v", err)
	}
	if app.ReviewedAt != nil {
		t.Fatalf("under review must not stamp reviewedAt")
	}
	if app.ReviewerID != "staff-1" {
		t.Fatalf("expected reviewer to be recorded")
	}

	if err := app.Review(StatusApproved, "staff-2", now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if app.ReviewedAt == nil || app.ReviewerID != "staff-2" {
		t.Fatalf("approval must stamp reviewer and time: %+v", app)
	}

	if err := app.Review(StatusRejected, "staff-1", now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition from terminal state, got %v", err)
	}
}
