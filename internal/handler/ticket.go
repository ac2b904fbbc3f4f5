package handler

import (
	"net/http" // HTTP status codes
	"time"     // formatting timestamps in responses

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/border-control-ticketing/internal/model"     // domain models
	"github.com/iliyamo/border-control-ticketing/internal/ticketing" // core ticket flows
)

// TicketHandler serves the public, unauthenticated surface: travelers
// register a ticket before reaching the border and later check its status
// with the number plus their passport number.
type TicketHandler struct {
	Svc *ticketing.Service
}

func NewTicketHandler(svc *ticketing.Service) *TicketHandler {
	if svc == nil {
		panic("nil service passed to NewTicketHandler")
	}
	return &TicketHandler{Svc: svc}
}

// Create handles POST /v1/tickets. The traveler submits the passenger form
// and optional family members; each member becomes a linked child ticket
// created in the same transaction. Returns 201 with the assigned numbers.
func (h *TicketHandler) Create(c echo.Context) error {
	var params ticketing.CreateTicketParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Svc.CreateTicket(c.Request().Context(), params)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ticketView is the public projection of a ticket. Internal ids and the
// soft-delete marker never leave the service.
type ticketView struct {
	TicketNo      string   `json:"ticket_no"`
	Status        string   `json:"status"`
	PassengerType string   `json:"passenger_type"`
	ServiceType   string   `json:"service_type"`
	ParentNo      *string  `json:"parent_no,omitempty"`
	ChildrenNo    []string `json:"children_no,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type decisionView struct {
	ActionType string  `json:"action_type"`
	Decision   string  `json:"decision"`
	Comment    *string `json:"comment,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func newTicketView(t *model.Ticket) ticketView {
	return ticketView{
		TicketNo:      t.TicketNo,
		Status:        t.Status,
		PassengerType: t.PassengerType,
		ServiceType:   t.ServiceType(),
		ParentNo:      t.ParentNo,
		ChildrenNo:    t.ChildrenNo,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
}

// Lookup handles GET /v1/tickets?ticket_no=...&passport_number=...
// Both parameters are required; a wrong passport number yields the same
// 404 as a wrong ticket number.
func (h *TicketHandler) Lookup(c echo.Context) error {
	detail, err := h.Svc.Lookup(c.Request().Context(),
		c.QueryParam("ticket_no"), c.QueryParam("passport_number"))
	if err != nil {
		return serviceError(c, err)
	}

	decisions := make([]decisionView, 0, len(detail.Decisions))
	for _, d := range detail.Decisions {
		decisions = append(decisions, decisionView{
			ActionType: d.ActionType,
			Decision:   d.Decision,
			Comment:    d.Comment,
			CreatedAt:  d.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket":    newTicketView(detail.Ticket),
		"decisions": decisions,
	})
}
