package ticketing

import (
	"context"
	"log"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// ScanResult is everything the agent UI needs to proceed to a decision:
// the claimed ticket with its form, the resolved port of entry, and the
// list of active ports for the port-of-action selector.
type ScanResult struct {
	Ticket      *model.Ticket        `json:"ticket"`
	Form        *model.PassengerForm `json:"passenger_form"`
	PortOfEntry *model.Port          `json:"port_of_entry"`
	ActivePorts []model.Port         `json:"ports"`
}

// Scan claims a ticket for processing by moving it to "pending". The claim
// is a lease, not a hard lock: it expires leaseWindow after the status
// write, and an expired lease is silently reclaimed by the next scanner.
//
// Failure modes, checked in order: unknown ticket; arrival scan on a
// departure-finalized ticket (ErrTicketFinalized); existing decision for
// the action type (ErrAlreadyDecided); fresh lease held by another agent
// (*LockHeldError with the remaining seconds).
func (s *Service) Scan(ctx context.Context, ticketNo, actionType string) (*ScanResult, error) {
	if !model.ValidActionType(actionType) {
		v := newValidationError()
		v.add("action_type", "must be \"arrival\" or \"departure\"")
		return nil, v
	}

	t, err := s.tickets.GetByNo(ctx, ticketNo)
	if err != nil {
		return nil, err
	}
	if actionType == model.ActionArrival && model.DepartureTerminal(t.Status) {
		return nil, ErrTicketFinalized
	}
	decided, err := s.decisions.ExistsForAction(ctx, t.ID, actionType)
	if err != nil {
		return nil, err
	}
	if decided {
		return nil, ErrAlreadyDecided
	}

	now := s.now()
	if t.Status == model.StatusPending {
		if expiry := t.UpdatedAt.Add(s.leaseWindow); now.Before(expiry) {
			return nil, &LockHeldError{Remaining: expiry.Sub(now)}
		}
	}

	// Single conditional write; two agents racing past the checks above
	// cannot both claim the lease.
	claimed, err := s.tickets.ClaimPending(ctx, t.ID, now.Add(-s.leaseWindow))
	if err != nil {
		return nil, err
	}
	if !claimed {
		// Lost the claim race; re-read to report the winner's remaining lease.
		remaining := s.leaseWindow
		if fresh, err := s.tickets.GetByNo(ctx, ticketNo); err == nil {
			remaining = fresh.UpdatedAt.Add(s.leaseWindow).Sub(now)
		}
		return nil, &LockHeldError{Remaining: remaining}
	}
	log.Printf("scan: ticket %s leased for %s", ticketNo, actionType)

	form, err := s.forms.GetByTicketID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	entryPort, err := s.ports.GetByID(ctx, form.PortOfEntry)
	if err != nil {
		return nil, err
	}
	active, err := s.ports.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	t.Status = model.StatusPending
	t.UpdatedAt = now
	return &ScanResult{Ticket: t, Form: form, PortOfEntry: entryPort, ActivePorts: active}, nil
}
