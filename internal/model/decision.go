package model

import "time"

// Decision action types and outcomes. Exactly one decision may exist per
// (ticket, action type) pair, so a ticket accumulates at most two decisions
// over its lifetime: one arrival and one departure.
const (
	ActionArrival   = "arrival"
	ActionDeparture = "departure"

	DecisionAccepted = "accepted"
	DecisionRejected = "rejected"
)

// ValidActionType reports whether s is a recognised action type.
func ValidActionType(s string) bool {
	return s == ActionArrival || s == ActionDeparture
}

// ValidDecision reports whether s is a recognised decision outcome.
func ValidDecision(s string) bool {
	return s == DecisionAccepted || s == DecisionRejected
}

// TerminalStatus composes the ticket status reached by recording the given
// decision for the given action type, e.g. ("accepted", "arrival") ->
// "accepted_arrival".
func TerminalStatus(decision, actionType string) string {
	return decision + "_" + actionType
}

// Decision is an agent's immutable accept/reject ruling for one action type
// on one ticket. PortOfAction is the port where the ruling was recorded,
// which is not necessarily the form's port of entry.
type Decision struct {
	ID           uint64    `json:"id"`             // decisions.id
	TicketID     uint64    `json:"ticket_id"`      // decisions.ticket_id
	UserID       uint64    `json:"user_id"`        // decisions.user_id (acting agent)
	ActionType   string    `json:"action_type"`    // decisions.action_type ("arrival" | "departure")
	Decision     string    `json:"decision"`       // decisions.decision ("accepted" | "rejected")
	PortOfAction uint64    `json:"port_of_action"` // decisions.port_of_action (FK ports.id)
	Comment      *string   `json:"comment"`        // decisions.comment (nullable)
	CreatedAt    time.Time `json:"created_at"`     // decisions.created_at
}
