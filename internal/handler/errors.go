package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/border-control-ticketing/internal/repository"
	"github.com/iliyamo/border-control-ticketing/internal/ticketing"
)

// serviceError translates ticketing/repository errors to HTTP responses.
// Every handler that calls into the ticketing core funnels unhandled errors
// through here so the status mapping stays in one place:
//
//	422 validation failures, unknown ports, overstay on a national
//	409 lease held, already decided, finalized, number taken
//	404 unknown ticket or form
//	403 acting without a port, acting at the wrong port
//	500 everything else, including a decision rollback
func serviceError(c echo.Context, err error) error {
	var ve *ticketing.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	}
	var lh *ticketing.LockHeldError
	if errors.As(err, &lh) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "ticket is being processed by another agent",
			"remaining_time": lh.RemainingSeconds(),
		})
	}

	switch {
	case errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrFormNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, ticketing.ErrUnknownPort):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown or inactive port of entry"})
	case errors.Is(err, ticketing.ErrInvalidTicketNo), errors.Is(err, ticketing.ErrInvalidPrefix):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, ticketing.ErrTicketNoTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket number already registered"})
	case errors.Is(err, ticketing.ErrTicketFinalized):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket already completed its departure"})
	case errors.Is(err, ticketing.ErrAlreadyDecided), errors.Is(err, repository.ErrDuplicateDecision):
		return c.JSON(http.StatusConflict, echo.Map{"error": "decision already recorded for this action type"})
	case errors.Is(err, ticketing.ErrNoPortAssigned):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "no port assigned to acting agent"})
	case errors.Is(err, ticketing.ErrWrongPort):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "agent port does not match ticket port of entry"})
	case errors.Is(err, ticketing.ErrNotForeigner):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "overstay applies to foreign passengers only"})
	case errors.Is(err, ticketing.ErrDecisionPersistence):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record decision; no changes were applied"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
