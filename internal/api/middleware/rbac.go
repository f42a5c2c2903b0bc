package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// RequireCapability rejects callers whose token role lacks any of caps. It is
// a fast path only; services re-check the role held in the credential store.
func RequireCapability(caps ...domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnknownPrincipal
			}
			for _, required := range caps {
				if !p.Role.Can(required) {
					return fmt.Errorf("%s required: %w", required, domain.ErrForbidden)
				}
			}
			return next(c)
		}
	}
}
