package ticketing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/border-control-ticketing/internal/model"
	"github.com/iliyamo/border-control-ticketing/internal/repository"
)

// WarningNoArrivalScan is attached (non-fatally) to a departure decision on
// a ticket that never reached an arrival-terminal status.
const WarningNoArrivalScan = "ticket was never scanned for arrival"

// DecideParams describes one decision submission. The acting user's
// identity and assigned port travel explicitly with the call; the service
// never consults ambient session state.
type DecideParams struct {
	TicketID     uint64
	ActionType   string
	Decision     string
	Comment      *string
	FormPatch    *model.FormPatch
	ActingUserID uint64
	ActingPortID uint64 // 0 means the user has no assigned port
}

// DecideResult reports the outcome of a recorded decision.
type DecideResult struct {
	TicketNo        string   `json:"ticket_no"`
	Status          string   `json:"status"`
	Decision        string   `json:"decision"`
	ActionType      string   `json:"action_type"`
	PassengerType   string   `json:"passenger_type"`
	Warning         *string  `json:"warning,omitempty"`
	ChildrenApplied []string `json:"children_applied,omitempty"`
}

func (p *DecideParams) validate() error {
	v := newValidationError()
	if p.TicketID == 0 {
		v.add("ticket_id", "required")
	}
	if !model.ValidActionType(p.ActionType) {
		v.add("action_type", "must be \"arrival\" or \"departure\"")
	}
	if !model.ValidDecision(p.Decision) {
		v.add("decision", "must be \"accepted\" or \"rejected\"")
	}
	return v.orNil()
}

// Decide records an accept/reject decision for one action type on one
// ticket, transitions the ticket (and any child tickets) to the matching
// terminal status, and persists the decision rows, all atomically. At most
// one decision ever exists per (ticket, action type); the guard runs inside
// the same transaction as the insert, with the table's unique key as the
// backstop for concurrent recorders.
//
// Children that already carry a decision for the action type, and child
// numbers that no longer resolve, are logged and skipped; everything else
// about the unit is all-or-nothing.
func (s *Service) Decide(ctx context.Context, params DecideParams) (*DecideResult, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	t, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}
	// A ticket without a form is a data-integrity anomaly. The legacy
	// system skipped the port check in that case; here it is a hard error.
	form, err := s.forms.GetByTicketID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if params.ActingPortID == 0 {
		return nil, ErrNoPortAssigned
	}
	if form.PortOfEntry != params.ActingPortID {
		return nil, ErrWrongPort
	}

	var warning *string
	if params.ActionType == model.ActionDeparture && !model.ArrivalTerminal(t.Status) {
		w := WarningNoArrivalScan
		warning = &w
	}

	newStatus := model.TerminalStatus(params.Decision, params.ActionType)
	var childrenApplied []string

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		decided, err := s.decisions.ExistsForActionTx(ctx, tx, t.ID, params.ActionType)
		if err != nil {
			return err
		}
		if decided {
			return repository.ErrDuplicateDecision
		}

		if params.FormPatch != nil {
			if err := s.forms.ApplyPatchTx(ctx, tx, t.ID, params.FormPatch); err != nil {
				return err
			}
		}
		if err := s.tickets.UpdateStatusTx(ctx, tx, t.ID, newStatus); err != nil {
			return err
		}
		if err := s.decisions.CreateTx(ctx, tx, &model.Decision{
			TicketID:     t.ID,
			UserID:       params.ActingUserID,
			ActionType:   params.ActionType,
			Decision:     params.Decision,
			PortOfAction: params.ActingPortID,
			Comment:      params.Comment,
		}); err != nil {
			return err
		}

		childrenApplied, err = s.propagateToChildrenTx(ctx, tx, t, params, newStatus)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateDecision):
			return nil, err
		default:
			log.Printf("decide: ticket %s rolled back: %v", t.TicketNo, err)
			return nil, fmt.Errorf("%w: %v", ErrDecisionPersistence, err)
		}
	}

	log.Printf("decide: ticket %s -> %s by user %d (%d child(ren) inherited)",
		t.TicketNo, newStatus, params.ActingUserID, len(childrenApplied))
	return &DecideResult{
		TicketNo:        t.TicketNo,
		Status:          newStatus,
		Decision:        params.Decision,
		ActionType:      params.ActionType,
		PassengerType:   t.PassengerType,
		Warning:         warning,
		ChildrenApplied: childrenApplied,
	}, nil
}

// propagateToChildrenTx applies the parent's transition to every resolvable
// child that has not yet been decided for the action type. Runs inside the
// parent's transaction so a failing child write rolls back the whole unit.
func (s *Service) propagateToChildrenTx(ctx context.Context, tx *sql.Tx, parent *model.Ticket, params DecideParams, newStatus string) ([]string, error) {
	if !parent.IsParent() {
		return nil, nil
	}
	childComment := fmt.Sprintf("inherited from parent ticket %s", parent.TicketNo)
	if params.Comment != nil && *params.Comment != "" {
		childComment = fmt.Sprintf("inherited from parent ticket %s: %s", parent.TicketNo, *params.Comment)
	}

	applied := make([]string, 0, len(parent.ChildrenNo))
	for _, childNo := range parent.ChildrenNo {
		child, err := s.tickets.GetByNoTx(ctx, tx, childNo)
		if err != nil {
			if errors.Is(err, repository.ErrTicketNotFound) {
				// Tolerates partially deleted families.
				log.Printf("decide: child ticket %s of parent %s not found, skipping", childNo, parent.TicketNo)
				continue
			}
			return nil, err
		}
		decided, err := s.decisions.ExistsForActionTx(ctx, tx, child.ID, params.ActionType)
		if err != nil {
			return nil, err
		}
		if decided {
			log.Printf("decide: child ticket %s already decided for %s, skipping", childNo, params.ActionType)
			continue
		}
		if err := s.tickets.UpdateStatusTx(ctx, tx, child.ID, newStatus); err != nil {
			return nil, err
		}
		if err := s.decisions.CreateTx(ctx, tx, &model.Decision{
			TicketID:     child.ID,
			UserID:       params.ActingUserID,
			ActionType:   params.ActionType,
			Decision:     params.Decision,
			PortOfAction: params.ActingPortID,
			Comment:      &childComment,
		}); err != nil {
			return nil, err
		}
		applied = append(applied, childNo)
	}
	return applied, nil
}
