package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/api/middleware"
	"github.com/quincy-permits/permit-portal/internal/core/domain"
	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

const formFileField = "file"

// DocumentHandler serves the public library and application attachments.
type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// List handles GET /documents.
//
// @Summary      List library documents
// @Description  search takes precedence over category.
// @Tags         documents
// @Produce      json
// @Param        category  query     string  false  "Category"
// @Param        search    query     string  false  "Name contains"
// @Success      200       {object}  listResponse[domain.Document]
// @Router       /documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		docs []*domain.Document
		err  error
	)
	if search := c.QueryParam("search"); search != "" {
		docs, err = h.service.Search(ctx, search)
	} else {
		docs, err = h.service.ListByCategory(ctx, c.QueryParam("category"))
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(docs))
}

// Categories handles GET /documents/categories.
//
// @Summary      List library categories
// @Tags         documents
// @Produce      json
// @Success      200  {object}  listResponse[string]
// @Router       /documents/categories [get]
func (h *DocumentHandler) Categories(c echo.Context) error {
	cats, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(cats))
}

// Download handles GET /documents/:id/file.
//
// @Summary      Download a document
// @Tags         documents
// @Produce      octet-stream
// @Param        id   path  string  true  "Document ID"
// @Success      200  {file}    binary
// @Failure      401  {object}  errorBody
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /documents/{id}/file [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	p, _ := middleware.PrincipalFrom(c)
	content, err := h.service.Fetch(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	defer content.Body.Close()

	doc := content.Document
	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	if doc.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(doc.Size, 10))
	}
	return c.Stream(http.StatusOK, doc.MimeType, content.Body)
}

// Upload handles POST /documents.
//
// @Summary      Add a document to the public library
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file      formData  file    true   "File"
// @Param        name      formData  string  false  "Display name"
// @Param        category  formData  string  false  "Category"
// @Success      201       {object}  domain.Document
// @Failure      400       {object}  errorBody
// @Failure      403       {object}  errorBody
// @Router       /documents [post]
func (h *DocumentHandler) Upload(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	in, err := readUpload(c)
	if err != nil {
		return err
	}
	in.Name = c.FormValue("name")
	in.Category = c.FormValue("category")

	doc, err := h.service.StorePublic(c.Request().Context(), p, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// Attach handles POST /applications/:id/documents.
//
// @Summary      Attach a file to an application
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true   "Application ID"
// @Param        file  formData  file    true   "File"
// @Param        name  formData  string  false  "Display name"
// @Success      201   {object}  domain.Document
// @Failure      400   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /applications/{id}/documents [post]
func (h *DocumentHandler) Attach(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	in, err := readUpload(c)
	if err != nil {
		return err
	}
	in.Name = c.FormValue("name")

	doc, err := h.service.Attach(c.Request().Context(), p, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// ListForApplication handles GET /applications/:id/documents.
//
// @Summary      List an application's attachments
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  listResponse[domain.Document]
// @Failure      403  {object}  errorBody
// @Failure      404  {object}  errorBody
// @Router       /applications/{id}/documents [get]
func (h *DocumentHandler) ListForApplication(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	docs, err := h.service.ListForApplication(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(docs))
}

// readUpload reads the multipart file field. Size limits are enforced by the
// BodyLimit middleware and again by the service.
func readUpload(c echo.Context) (ports.UploadInput, error) {
	fh, err := c.FormFile(formFileField)
	if err != nil {
		return ports.UploadInput{}, domain.NewValidationError(map[string]string{formFileField: "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return ports.UploadInput{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return ports.UploadInput{}, err
	}
	return ports.UploadInput{
		Filename: fh.Filename,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Content:  content,
	}, nil
}
