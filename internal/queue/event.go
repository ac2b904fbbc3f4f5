// Package queue defines message payloads exchanged over the message broker.
package queue

// DecisionRecordedEvent is published after a decision commits. It carries
// enough for downstream consumers to log, notify border partners, or feed
// analytics without querying the primary database. ChildrenApplied lists
// child ticket numbers the decision propagated to.
type DecisionRecordedEvent struct {
	TicketID        uint64   `json:"ticket_id"`
	TicketNo        string   `json:"ticket_no"`
	ActionType      string   `json:"action_type"`
	Decision        string   `json:"decision"`
	Status          string   `json:"status"`
	UserID          uint64   `json:"user_id"`
	PortOfAction    uint64   `json:"port_of_action"`
	PassengerType   string   `json:"passenger_type"`
	Warning         string   `json:"warning,omitempty"`
	ChildrenApplied []string `json:"children_applied,omitempty"`
	RecordedAt      string   `json:"recorded_at"`
}
