package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

func TestStatisticsService_Statistics(t *testing.T) {
	users := newStubUserRepo()
	apps := newStubAppRepo()
	staff := users.seed("s@example.com", domain.RoleReviewer)
	applicant := users.seed("a@example.com", domain.RoleApplicant)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	add := func(id string, status domain.ApplicationStatus, age time.Duration) {
		_ = apps.Create(context.Background(), &domain.Application{
			ID: id, ApplicantID: applicant.ID, Status: status, CreatedAt: now.Add(-age),
		})
	}
	day := 24 * time.Hour
	// Current week.
	add("c1", domain.StatusSubmitted, 1*day)
	add("c2", domain.StatusUnderReview, 2*day)
	add("c3", domain.StatusApproved, 3*day)
	add("c4", domain.StatusRejected, 4*day)
	add("c5", domain.StatusDraft, 5*day)
	// Previous week.
	add("p1", domain.StatusApproved, 8*day)
	add("p2", domain.StatusSubmitted, 9*day)
	// Outside both windows.
	add("old", domain.StatusApproved, 30*day)

	svc := NewStatisticsService(apps, users)
	svc.now = func() time.Time { return now }

	stats, err := svc.Statistics(context.Background(), principalOf(staff), "week")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if stats.TimeRange != "week" {
		t.Fatalf("unexpected range %q", stats.TimeRange)
	}
	if stats.TotalPermits != 5 || stats.PendingReview != 2 || stats.Approved != 1 || stats.Rejected != 1 {
		t.Fatalf("unexpected current counts: %+v", stats)
	}
	if stats.PreviousTotalPermits != 2 || stats.PreviousPendingReview != 1 || stats.PreviousApproved != 1 {
		t.Fatalf("unexpected previous counts: %+v", stats)
	}
	if stats.Revenue != 500 || stats.PreviousRevenue != 200 {
		t.Fatalf("unexpected revenue: %v %v", stats.Revenue, stats.PreviousRevenue)
	}
	if stats.TotalPermitsChange != 150 || stats.PendingReviewChange != 100 || stats.ApprovedChange != 0 || stats.RevenueChange != 150 {
		t.Fatalf("unexpected changes: %+v", stats)
	}

	all, _ := svc.Statistics(context.Background(), principalOf(staff), "all")
	if all.TotalPermits != 8 || all.PreviousTotalPermits != 0 {
		t.Fatalf("unexpected all-time totals: %+v", all)
	}

	fallback, _ := svc.Statistics(context.Background(), principalOf(staff), "fortnight")
	if fallback.TimeRange != "month" {
		t.Fatalf("expected fallback to month, got %q", fallback.TimeRange)
	}
}

func TestStatisticsService_RequiresReportAccess(t *testing.T) {
	users := newStubUserRepo()
	applicant := users.seed("a@example.com", domain.RoleApplicant)
	svc := NewStatisticsService(newStubAppRepo(), users)

	if _, err := svc.Statistics(context.Background(), principalOf(applicant), "month"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Recent(context.Background(), principalOf(applicant), 5); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestStatisticsService_Recent(t *testing.T) {
	users := newStubUserRepo()
	apps := newStubAppRepo()
	admin := users.seed("admin@example.com", domain.RoleAdmin)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		_ = apps.Create(context.Background(), &domain.Application{
			ID:        string(rune('a' + i)),
			Status:    domain.StatusSubmitted,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	svc := NewStatisticsService(apps, users)

	recent, err := svc.Recent(context.Background(), principalOf(admin), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != defaultRecentLimit {
		t.Fatalf("expected %d items, got %d", defaultRecentLimit, len(recent))
	}
	if recent[0].ID != "o" {
		t.Fatalf("expected newest first, got %s", recent[0].ID)
	}

	three, _ := svc.Recent(context.Background(), principalOf(admin), 3)
	if len(three) != 3 {
		t.Fatalf("expected 3 items, got %d", len(three))
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		old, cur, want float64
	}{
		{0, 0, 0},
		{0, 7, 100},
		{4, 2, -50},
		{2, 5, 150},
	}
	for _, tt := range tests {
		if got := percentChange(tt.old, tt.cur); got != tt.want {
			t.Errorf("percentChange(%v, %v) = %v, want %v", tt.old, tt.cur, got, tt.want)
		}
	}
}
