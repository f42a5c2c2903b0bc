package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const (
	applicationFee     = 100.0
	defaultRecentLimit = 10
)

// epoch bounds the "all" time range.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// StatisticsService computes dashboard figures from stored applications.
type StatisticsService struct {
	apps  ports.ApplicationRepository
	users ports.UserRepository
	now   func() time.Time
}

func NewStatisticsService(apps ports.ApplicationRepository, users ports.UserRepository) *StatisticsService {
	return &StatisticsService{apps: apps, users: users, now: time.Now}
}

// Statistics compares the window ending now with the window before it.
// Unknown ranges fall back to "month".
func (s *StatisticsService) Statistics(ctx context.Context, actor domain.Principal, timeRange string) (*domain.Statistics, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}

	timeRange = normalizeTimeRange(timeRange)
	now := s.now().UTC()
	start, prevStart := windowStart(now, timeRange)

	current, err := s.apps.CreatedBetween(ctx, start, now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	previous, err := s.apps.CreatedBetween(ctx, prevStart, start)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}

	cur := tally(current)
	prev := tally(previous)

	return &domain.Statistics{
		TimeRange:             timeRange,
		TotalPermits:          cur.total,
		PendingReview:         cur.pending,
		Approved:              cur.approved,
		Rejected:              cur.rejected,
		Revenue:               float64(cur.total) * applicationFee,
		PreviousTotalPermits:  prev.total,
		PreviousPendingReview: prev.pending,
		PreviousApproved:      prev.approved,
		PreviousRevenue:       float64(prev.total) * applicationFee,
		TotalPermitsChange:    percentChange(float64(prev.total), float64(cur.total)),
		PendingReviewChange:   percentChange(float64(prev.pending), float64(cur.pending)),
		ApprovedChange:        percentChange(float64(prev.approved), float64(cur.approved)),
		RevenueChange:         percentChange(float64(prev.total)*applicationFee, float64(cur.total)*applicationFee),
	}, nil
}

// Recent returns the newest applications, capped at maxPageSize.
func (s *StatisticsService) Recent(ctx context.Context, actor domain.Principal, limit int) ([]*domain.Application, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	items, _, err := s.apps.List(ctx, ports.ListApplicationsFilter{Page: 1, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("recent applications: %w", err)
	}
	return items, nil
}

func (s *StatisticsService) authorize(ctx context.Context, actor domain.Principal) error {
	user, err := resolveActor(ctx, s.users, actor)
	if err != nil {
		return err
	}
	if !user.Role.Can(domain.CapViewReports) {
		return fmt.Errorf("view reports: %w", domain.ErrForbidden)
	}
	return nil
}

type counts struct {
	total, pending, approved, rejected int64
}

func tally(apps []*domain.Application) counts {
	var c counts
	for _, a := range apps {
		c.total++
		switch a.Status {
		case domain.StatusSubmitted, domain.StatusUnderReview:
			c.pending++
		case domain.StatusApproved:
			c.approved++
		case domain.StatusRejected:
			c.rejected++
		}
	}
	return c
}

func normalizeTimeRange(r string) string {
	switch r = strings.ToLower(strings.TrimSpace(r)); r {
	case "day", "week", "month", "year", "all":
		return r
	default:
		return "month"
	}
}

// windowStart returns the start of the current window and of the one before.
func windowStart(now time.Time, timeRange string) (start, prevStart time.Time) {
	switch timeRange {
	case "day":
		start = now.AddDate(0, 0, -1)
		return start, start.AddDate(0, 0, -1)
	case "week":
		start = now.AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, -7)
	case "year":
		start = now.AddDate(-1, 0, 0)
		return start, start.AddDate(-1, 0, 0)
	case "all":
		return epoch, time.Time{}
	default:
		start = now.AddDate(0, -1, 0)
		return start, start.AddDate(0, -1, 0)
	}
}

// percentChange treats growth from zero as 100%.
func percentChange(old, cur float64) float64 {
	if old == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return (cur - old) * 100 / old
}
