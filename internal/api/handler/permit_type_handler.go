package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type PermitTypeHandler struct {
	service ports.PermitTypeService
}

func NewPermitTypeHandler(service ports.PermitTypeService) *PermitTypeHandler {
	return &PermitTypeHandler{service: service}
}

// List handles GET /permit-types.
//
// @Summary      List permit types
// @Tags         permit-types
// @Produce      json
// @Param        category  query     string  false  "Category filter"
// @Success      200       {object}  listResponse[domain.PermitType]
// @Router       /permit-types [get]
func (h *PermitTypeHandler) List(c echo.Context) error {
	types, err := h.service.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(types))
}

// Get handles GET /permit-types/:id.
//
// @Summary      Get a permit type with its form schema
// @Tags         permit-types
// @Produce      json
// @Param        id   path      string  true  "Permit type ID"
// @Success      200  {object}  domain.PermitType
// @Failure      404  {object}  errorBody
// @Router       /permit-types/{id} [get]
func (h *PermitTypeHandler) Get(c echo.Context) error {
	pt, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pt)
}

// GetBySlug handles GET /permit-types/by-slug/:slug.
//
// @Summary      Get a permit type by slug
// @Tags         permit-types
// @Produce      json
// @Param        slug  path      string  true  "Permit type slug"
// @Success      200   {object}  domain.PermitType
// @Failure      404   {object}  errorBody
// @Router       /permit-types/by-slug/{slug} [get]
func (h *PermitTypeHandler) GetBySlug(c echo.Context) error {
	pt, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pt)
}
