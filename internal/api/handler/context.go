package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/api/middleware"
	"github.com/quincy-permits/permit-portal/internal/core/domain"
)

// principal extracts the caller injected by the Auth middleware. Its absence
// means the route was registered without Auth, which is treated as
// unauthenticated rather than a server error.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.ErrUnknownPrincipal
	}
	return p, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError(map[string]string{"body": "invalid payload"})
	}
	return c.Validate(req)
}

// queryInt parses an optional integer query parameter. Unparseable values
// are reported as validation errors.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(map[string]string{name: name + " must be an integer"})
	}
	return n, nil
}
