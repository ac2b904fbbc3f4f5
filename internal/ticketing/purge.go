package ticketing

import (
	"context"
	"database/sql"
	"log"
)

// SoftDelete logically removes a ticket. The row, its form and its
// decisions stay in place and the ticket number remains reserved; only the
// explicit Purge operation removes data.
func (s *Service) SoftDelete(ctx context.Context, ticketID uint64) error {
	if err := s.tickets.SoftDelete(ctx, ticketID); err != nil {
		return err
	}
	log.Printf("purge: ticket %d soft-deleted", ticketID)
	return nil
}

// Purge hard-deletes a ticket together with its decisions and passenger
// form in one transaction. This is a distinct administrative operation,
// never a side effect of ordinary deletion, and works on soft-deleted
// tickets as well.
func (s *Service) Purge(ctx context.Context, ticketID uint64) error {
	t, err := s.tickets.GetAnyByID(ctx, ticketID)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.decisions.DeleteByTicketTx(ctx, tx, t.ID); err != nil {
			return err
		}
		if err := s.forms.DeleteByTicketTx(ctx, tx, t.ID); err != nil {
			return err
		}
		return s.tickets.DeleteTx(ctx, tx, t.ID)
	})
	if err != nil {
		return err
	}
	log.Printf("purge: ticket %s (%d) purged with form and decisions", t.TicketNo, t.ID)
	return nil
}
