package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		caps []domain.Capability
		want error
	}{
		{"admin manages users", domain.RoleAdmin, []domain.Capability{domain.CapManageUsers}, nil},
		{"reviewer views reports", domain.RoleReviewer, []domain.Capability{domain.CapViewReports}, nil},
		{"reviewer cannot manage users", domain.RoleReviewer, []domain.Capability{domain.CapManageUsers}, domain.ErrForbidden},
		{"applicant cannot review", domain.RoleApplicant, []domain.Capability{domain.CapReviewApplications}, domain.ErrForbidden},
		{"all caps required", domain.RoleReviewer, []domain.Capability{domain.CapViewReports, domain.CapSubmitApplications}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("")
			c.Set(PrincipalKey, domain.Principal{UserID: "u1", Role: tt.role})

			err := RequireCapability(tt.caps...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.want == nil {
				if err != nil || rec.Code != http.StatusOK {
					t.Fatalf("expected pass, got %v (%d)", err, rec.Code)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireCapability_NoPrincipal(t *testing.T) {
	c, _ := newContext("")
	err := RequireCapability(domain.CapViewReports)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
