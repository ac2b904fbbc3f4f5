package ticketing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// EditForm applies an explicit partial update to a ticket's passenger form.
// Edits are allowed while at least one leg remains undecided; once the
// departure leg is finalized the form is frozen together with the ticket.
// A patch that moves the port of entry must name an existing port.
func (s *Service) EditForm(ctx context.Context, ticketID uint64, patch *model.FormPatch) (*model.PassengerForm, error) {
	if patch.Empty() {
		v := newValidationError()
		v.add("form", "patch carries no changes")
		return nil, v.orNil()
	}
	if patch.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *patch.DateOfBirth); err != nil {
			v := newValidationError()
			v.add("date_of_birth", "must be a YYYY-MM-DD date")
			return nil, v.orNil()
		}
	}

	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if model.DepartureTerminal(t.Status) {
		return nil, ErrTicketFinalized
	}
	if _, err := s.forms.GetByTicketID(ctx, t.ID); err != nil {
		return nil, err
	}
	if patch.PortOfEntryID != nil {
		if _, err := s.ports.GetByID(ctx, *patch.PortOfEntryID); err != nil {
			return nil, fmt.Errorf("%w: id %d", ErrUnknownPort, *patch.PortOfEntryID)
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.forms.ApplyPatchTx(ctx, tx, t.ID, patch)
	})
	if err != nil {
		return nil, err
	}
	return s.forms.GetByTicketID(ctx, t.ID)
}
