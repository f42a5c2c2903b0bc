package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quincy-permits/permit-portal/internal/core/ports"
)

type PropertyRecordHandler struct {
	service ports.PropertyRecordService
}

func NewPropertyRecordHandler(service ports.PropertyRecordService) *PropertyRecordHandler {
	return &PropertyRecordHandler{service: service}
}

// Search handles GET /property-records/search.
//
// @Summary      Search property records
// @Description  Matches an address fragment (case-insensitive) or an exact parcel id. An empty q lists every record.
// @Tags         property-records
// @Produce      json
// @Param        q    query     string  false  "Address fragment or parcel id"
// @Success      200  {object}  listResponse[domain.PropertyRecord]
// @Router       /property-records/search [get]
func (h *PropertyRecordHandler) Search(c echo.Context) error {
	records, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(records))
}
