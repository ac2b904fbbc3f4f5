package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/border-control-ticketing/internal/ticketing" // core ticket flows
)

// AdminTicketHandler serves the supervisor/admin read side plus the two
// destructive operations. Soft delete is available to supervisors and
// admins; purge, which permanently removes the ticket with its form and
// decisions, is reserved for admins by route middleware.
type AdminTicketHandler struct {
	Svc *ticketing.Service
}

func NewAdminTicketHandler(svc *ticketing.Service) *AdminTicketHandler {
	if svc == nil {
		panic("nil service passed to NewAdminTicketHandler")
	}
	return &AdminTicketHandler{Svc: svc}
}

func ticketIDParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Get handles GET /v1/admin/tickets/:id and returns the ticket with its
// passenger form and full decision history.
func (h *AdminTicketHandler) Get(c echo.Context) error {
	id, ok := ticketIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	detail, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Overstay handles GET /v1/admin/tickets/:id/overstay. Only foreign
// passengers have a stay limit; requesting the figure for a national is
// rejected.
func (h *AdminTicketHandler) Overstay(c echo.Context) error {
	id, ok := ticketIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	st, err := h.Svc.OverstayStatus(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// SoftDelete handles DELETE /v1/admin/tickets/:id. The ticket disappears
// from every lookup but the row, form and decisions stay recoverable.
func (h *AdminTicketHandler) SoftDelete(c echo.Context) error {
	id, ok := ticketIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Svc.SoftDelete(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// Purge handles DELETE /v1/admin/tickets/:id/purge. The ticket, its form
// and its decisions are removed in one transaction; soft-deleted tickets
// are eligible.
func (h *AdminTicketHandler) Purge(c echo.Context) error {
	id, ok := ticketIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Svc.Purge(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"purged": true})
}
