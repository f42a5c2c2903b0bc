package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

// Context keys set by Auth.
const (
	PrincipalKey = "principal"
	TokenKey     = "token"
)

// Auth validates the bearer token and injects the caller's principal and raw
// token into the context. Failures are returned as domain errors so the
// error handler renders them as 401.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return authenticate(tokens, false)
}

// OptionalAuth behaves like Auth when an Authorization header is present and
// lets anonymous requests through otherwise.
func OptionalAuth(tokens ports.TokenService) echo.MiddlewareFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens ports.TokenService, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					return next(c)
				}
				return domain.ErrTokenMissing
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.ErrTokenMalformed
			}
			raw := strings.TrimSpace(parts[1])

			claims, err := tokens.Validate(c.Request().Context(), raw)
			if err != nil {
				return err
			}

			c.Set(PrincipalKey, claims.Principal())
			c.Set(TokenKey, raw)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal injected by Auth.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(domain.Principal)
	return p, ok && p.UserID != ""
}

// TokenFrom returns the raw bearer token injected by Auth.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(TokenKey).(string)
	return t
}
