package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

// ApplicationHandler handles HTTP requests for permit applications.
type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// --- Request / Response types ---

type createApplicationRequest struct {
	PermitTypeID string         `json:"permitTypeId" validate:"required"`
	FormData     map[string]any `json:"formData"`
	Submit       bool           `json:"submit"`
}

// updateApplicationRequest distinguishes absent fields (nil) from empty ones.
type updateApplicationRequest struct {
	FormData   map[string]any `json:"formData"`
	Submit     *bool          `json:"submit"`
	Status     *string        `json:"status"`
	StaffNotes *string        `json:"staffNotes"`
}

type applicationPage struct {
	Items      []*domain.Application `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
}

// Create handles POST /applications.
//
// @Summary      Create an application
// @Description  Creates a DRAFT, or a SUBMITTED application when submit is true.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createApplicationRequest  true  "Application"
// @Success      201   {object}  domain.Application
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /applications [post]
func (h *ApplicationHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.service.Create(c.Request().Context(), p, ports.CreateApplicationInput{
		PermitTypeID: req.PermitTypeID,
		FormData:     req.FormData,
		Submit:       req.Submit,
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/applications/"+app.ID)
	return c.JSON(http.StatusCreated, app)
}

// ListMine handles GET /applications.
//
// @Summary      List the caller's applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listResponse[domain.Application]
// @Failure      401  {object}  errorBody
// @Router       /applications [get]
func (h *ApplicationHandler) ListMine(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListMine(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(apps))
}

// ListAll handles GET /applications/staff.
//
// @Summary      Staff queue across all applicants
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        status        query     string  false  "Status filter"
// @Param        permitTypeId  query     string  false  "Permit type filter"
// @Param        page          query     int     false  "Page (1-based)"
// @Param        limit         query     int     false  "Page size (max 100)"
// @Success      200           {object}  applicationPage
// @Failure      400           {object}  errorBody
// @Failure      403           {object}  errorBody
// @Router       /applications/staff [get]
func (h *ApplicationHandler) ListAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	res, err := h.service.ListAll(c.Request().Context(), p, ports.ListApplicationsInput{
		Status:       c.QueryParam("status"),
		PermitTypeID: c.QueryParam("permitTypeId"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	items := res.Items
	if items == nil {
		items = []*domain.Application{}
	}
	return c.JSON(http.StatusOK, applicationPage{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /applications/:id.
//
// @Summary      Get an application
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  domain.Application
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /applications/{id} [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	app, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// Update handles PATCH /applications/:id.
//
// @Summary      Update an application
// @Description  Applicants edit form data or submit their own drafts. Staff change status and notes.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Application ID"
// @Param        body  body      updateApplicationRequest  true  "Changes"
// @Success      200   {object}  domain.Application
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /applications/{id} [patch]
func (h *ApplicationHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.service.Update(c.Request().Context(), p, c.Param("id"), ports.UpdateApplicationInput{
		FormData:   req.FormData,
		Submit:     req.Submit,
		Status:     req.Status,
		StaffNotes: req.StaffNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}

// Submit handles POST /applications/:id/submit.
//
// @Summary      Submit a draft
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  domain.Application
// @Failure      400  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      409  {object}  errorBody
// @Router       /applications/{id}/submit [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	app, err := h.service.Submit(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}
