package ticketing

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/border-control-ticketing/internal/model"
	"github.com/iliyamo/border-control-ticketing/internal/repository"
)

// TicketDetail is the full read-side view of one ticket: the record, its
// passenger form and every decision recorded so far in chronological order.
type TicketDetail struct {
	Ticket    *model.Ticket        `json:"ticket"`
	Form      *model.PassengerForm `json:"passenger_form"`
	Decisions []model.Decision     `json:"decisions"`
}

// Detail loads the full view of a live ticket by id.
func (s *Service) Detail(ctx context.Context, ticketID uint64) (*TicketDetail, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	f, err := s.forms.GetByTicketID(ctx, t.ID)
	if err != nil && !errors.Is(err, repository.ErrFormNotFound) {
		return nil, err
	}
	ds, err := s.decisions.ListByTicket(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: t, Form: f, Decisions: ds}, nil
}

// Lookup serves the traveler's self-service status check. The caller must
// present both the ticket number and the passport number from the form; a
// mismatch is reported as not-found so the endpoint cannot be used to
// enumerate which ticket numbers exist.
func (s *Service) Lookup(ctx context.Context, ticketNo, passportNumber string) (*TicketDetail, error) {
	ticketNo = strings.TrimSpace(ticketNo)
	passportNumber = strings.TrimSpace(passportNumber)
	if ticketNo == "" || passportNumber == "" {
		v := newValidationError()
		if ticketNo == "" {
			v.add("ticket_no", "required")
		}
		if passportNumber == "" {
			v.add("passport_number", "required")
		}
		return nil, v.orNil()
	}

	t, err := s.tickets.GetByNo(ctx, ticketNo)
	if err != nil {
		return nil, err
	}
	f, err := s.forms.GetByTicketID(ctx, t.ID)
	if err != nil {
		if errors.Is(err, repository.ErrFormNotFound) {
			return nil, repository.ErrTicketNotFound
		}
		return nil, err
	}
	if !strings.EqualFold(f.PassportNumber, passportNumber) {
		return nil, repository.ErrTicketNotFound
	}
	ds, err := s.decisions.ListByTicket(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &TicketDetail{Ticket: t, Form: f, Decisions: ds}, nil
}
