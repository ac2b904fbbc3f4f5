package handler

import (
	"context"  // detached context for event publishing
	"log"      // fallback logging for publish failures
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/border-control-ticketing/internal/middleware"        // identity extraction
	"github.com/iliyamo/border-control-ticketing/internal/model"             // domain models
	"github.com/iliyamo/border-control-ticketing/internal/queue"             // event payloads
	"github.com/iliyamo/border-control-ticketing/internal/repository"        // decision history listing
	publisher "github.com/iliyamo/border-control-ticketing/internal/service" // event publishing
	"github.com/iliyamo/border-control-ticketing/internal/ticketing"         // core ticket flows
)

// AgentHandler serves the booth workflow: scan a ticket to claim it,
// record the decision, correct form data, and review recent activity.
// JWT authentication and the AGENT role check run in middleware; the
// acting user id and port id are read from the verified token claims and
// passed to the ticketing core explicitly.
type AgentHandler struct {
	Svc       *ticketing.Service
	Decisions *repository.DecisionRepo
}

func NewAgentHandler(svc *ticketing.Service, decisions *repository.DecisionRepo) *AgentHandler {
	if svc == nil || decisions == nil {
		panic("nil dependency passed to NewAgentHandler")
	}
	return &AgentHandler{Svc: svc, Decisions: decisions}
}

// Scan handles POST /v1/agent/scan/:ticket_no. The action type comes from
// the body ({"action_type": "arrival"}) or the action_type query parameter.
// A successful scan moves the ticket to pending and returns everything the
// booth screen needs; a fresh lease held elsewhere yields 409 with the
// seconds until it expires.
func (h *AgentHandler) Scan(c echo.Context) error {
	ticketNo := c.Param("ticket_no")

	var body struct {
		ActionType string `json:"action_type"`
	}
	_ = c.Bind(&body) // body is optional when the query parameter is used
	action := body.ActionType
	if action == "" {
		action = c.QueryParam("action_type")
	}

	res, err := h.Svc.Scan(c.Request().Context(), ticketNo, action)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type decideReq struct {
	TicketID   uint64           `json:"ticket_id"`
	ActionType string           `json:"action_type"`
	Decision   string           `json:"decision"`
	Comment    *string          `json:"comment,omitempty"`
	Form       *model.FormPatch `json:"passenger_form,omitempty"`
}

// Decide handles POST /v1/agent/decide. The decision, any form
// corrections, the status transition and the child propagation commit in
// one transaction; on success a DecisionRecordedEvent is published for the
// audit log consumer. Publish failures are logged and ignored, the
// committed decision is the source of truth.
func (h *AgentHandler) Decide(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	portID, _ := middleware.PortID(c) // zero when the token has no port claim

	var req decideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Svc.Decide(c.Request().Context(), ticketing.DecideParams{
		TicketID:     req.TicketID,
		ActionType:   req.ActionType,
		Decision:     req.Decision,
		Comment:      req.Comment,
		FormPatch:    req.Form,
		ActingUserID: userID,
		ActingPortID: portID,
	})
	if err != nil {
		return serviceError(c, err)
	}

	go func(res ticketing.DecideResult) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		warning := ""
		if res.Warning != nil {
			warning = *res.Warning
		}
		ev := queue.DecisionRecordedEvent{
			TicketID:        req.TicketID,
			TicketNo:        res.TicketNo,
			ActionType:      res.ActionType,
			Decision:        res.Decision,
			Status:          res.Status,
			UserID:          userID,
			PortOfAction:    portID,
			PassengerType:   res.PassengerType,
			Warning:         warning,
			ChildrenApplied: res.ChildrenApplied,
			RecordedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := publisher.PublishDecisionRecorded(ctx, ev); err != nil {
			log.Printf("decide: publish event for ticket %s failed: %v", res.TicketNo, err)
		}
	}(*res)

	return c.JSON(http.StatusOK, res)
}

// EditForm handles PATCH /v1/agent/tickets/:id/form. Only the fields
// present in the body are changed. Edits are rejected once the ticket
// reaches a departure-terminal status.
func (h *AgentHandler) EditForm(c echo.Context) error {
	ticketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || ticketID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	var patch model.FormPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	form, err := h.Svc.EditForm(c.Request().Context(), ticketID, &patch)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"passenger_form": form})
}

// History handles GET /v1/agent/history?limit=N. Returns the agent's most
// recent decisions, newest first. The limit defaults to 20 and is capped
// at 100.
func (h *AgentHandler) History(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	ds, err := h.Decisions.ListByUser(c.Request().Context(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"decisions": ds})
}
