package model

import "time"

// Ticket status values. A ticket starts in draft when the traveler submits
// the base form, moves to pending while an agent holds the scan lease, and
// ends in one of the four terminal decision statuses. Departure-terminal
// states may only be reached after the departure leg is decided; there is
// no transition back to draft.
const (
	StatusDraft             = "draft"
	StatusPending           = "pending"
	StatusAcceptedArrival   = "accepted_arrival"
	StatusRejectedArrival   = "rejected_arrival"
	StatusAcceptedDeparture = "accepted_departure"
	StatusRejectedDeparture = "rejected_departure"
)

// Passenger types accepted on ticket creation.
const (
	PassengerNational  = "national"
	PassengerForeigner = "foreigner"
)

// Ticket number prefixes. J and C numbers are minted by this service;
// G numbers belong to cross-service "mixed" tickets and are always
// supplied by the collaborating subsystem at creation time.
const (
	PrefixImmigration = 'J'
	PrefixCustoms     = 'C'
	PrefixMixed       = 'G'
)

// Ticket represents a single travel record. A ticket is exactly one of
// three shapes: standalone (no parent, no children), parent (non-empty
// ChildrenNo, nil ParentNo) or child (ParentNo set, empty ChildrenNo).
//
// Fields:
//
//	ID            – primary key identifier.
//	TicketNo      – unique formatted number, e.g. "J00000001". Immutable.
//	Status        – current lifecycle status (see constants above).
//	PassengerType – "national" or "foreigner".
//	Email         – optional contact email.
//	ParentNo      – back-reference to the parent's TicketNo (children only).
//	ChildrenNo    – ordered child ticket numbers (parents only).
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last status change; doubles as the scan-lease anchor
//	                while Status is "pending".
//	DeletedAt     – soft-delete marker; nil for live tickets.
type Ticket struct {
	ID            uint64     `json:"id"`                    // tickets.id
	TicketNo      string     `json:"ticket_no"`             // tickets.ticket_no
	Status        string     `json:"status"`                // tickets.status
	PassengerType string     `json:"passenger_type"`        // tickets.passenger_type
	Email         *string    `json:"email,omitempty"`       // tickets.email (nullable)
	ParentNo      *string    `json:"parent_no,omitempty"`   // tickets.parent_no (nullable)
	ChildrenNo    []string   `json:"children_no,omitempty"` // tickets.children_no (JSON array, nil unless parent)
	CreatedAt     time.Time  `json:"created_at"`            // tickets.created_at
	UpdatedAt     time.Time  `json:"updated_at"`            // tickets.updated_at
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`  // tickets.deleted_at (nullable)
}

// IsParent reports whether the ticket anchors a family group.
func (t *Ticket) IsParent() bool { return len(t.ChildrenNo) > 0 }

// IsChild reports whether the ticket belongs to a family group anchor.
func (t *Ticket) IsChild() bool { return t.ParentNo != nil && *t.ParentNo != "" }

// ServiceType maps the ticket number prefix to the owning service.
func (t *Ticket) ServiceType() string {
	if t.TicketNo == "" {
		return "unknown"
	}
	switch t.TicketNo[0] {
	case PrefixImmigration:
		return "immigration"
	case PrefixCustoms:
		return "customs"
	case PrefixMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ArrivalTerminal reports whether s is one of the arrival-terminal statuses.
func ArrivalTerminal(s string) bool {
	return s == StatusAcceptedArrival || s == StatusRejectedArrival
}

// DepartureTerminal reports whether s is one of the departure-terminal statuses.
func DepartureTerminal(s string) bool {
	return s == StatusAcceptedDeparture || s == StatusRejectedDeparture
}
