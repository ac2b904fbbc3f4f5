package ticketing

import (
	"errors"
	"fmt"
	"time"
)

// Business-rule errors returned by the ticketing service. Handlers translate
// these into transport status codes: validation errors to 422, conflicts to
// 409, authorization failures to 403, unknown references to 404 and
// persistence failures to 500. Not-found and duplicate-decision conditions
// reuse the repository sentinels so both layers surface the same value.
var (
	// ErrInvalidPrefix is returned when a ticket number prefix is not one
	// the generator mints ('J' or 'C'). 'G' numbers are never generated
	// here; they arrive pre-assigned from the collaborating subsystem.
	ErrInvalidPrefix = errors.New("invalid ticket number prefix")

	// ErrNumberSpaceExhausted is returned when a prefix has consumed all
	// 8-hex-digit numbers (FFFFFFFF).
	ErrNumberSpaceExhausted = errors.New("ticket number space exhausted for prefix")

	// ErrInvalidTicketNo is returned when a supplied ticket number does not
	// match the <prefix><8 uppercase hex digits> format.
	ErrInvalidTicketNo = errors.New("malformed ticket number")

	// ErrTicketNoTaken is returned when an externally supplied mixed-service
	// number collides with an existing ticket (soft-deleted included).
	ErrTicketNoTaken = errors.New("ticket number already in use")

	// ErrUnknownPort is returned when a port code does not resolve to an
	// active port at ticket-creation time.
	ErrUnknownPort = errors.New("unknown or inactive port")

	// ErrTicketFinalized is returned when an arrival scan targets a ticket
	// already in a departure-terminal status.
	ErrTicketFinalized = errors.New("ticket already finalized for departure")

	// ErrAlreadyDecided is returned by scan when a decision already exists
	// for the requested action type, so there is nothing left to work.
	ErrAlreadyDecided = errors.New("ticket already decided for this action type")

	// ErrNoPortAssigned is returned when the acting user has no assigned
	// port and therefore cannot record decisions anywhere.
	ErrNoPortAssigned = errors.New("acting user has no assigned port")

	// ErrWrongPort is returned when the ticket's port of entry differs from
	// the acting user's assigned port.
	ErrWrongPort = errors.New("ticket is not associated with the acting user's port")

	// ErrNotForeigner is returned when overstay status is requested for a
	// ticket whose passenger type is not foreigner.
	ErrNotForeigner = errors.New("overstay status applies only to foreigner tickets")

	// ErrDecisionPersistence wraps any unexpected failure inside the decide
	// transaction. The transaction is fully rolled back before this is
	// returned; no partial parent or child state survives.
	ErrDecisionPersistence = errors.New("decision could not be persisted")
)

// LockHeldError reports that another agent holds a fresh scan lease on the
// ticket. Remaining is the time left until the lease becomes reclaimable.
type LockHeldError struct {
	Remaining time.Duration
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("another agent is scanning this ticket (retry in %ds)", e.RemainingSeconds())
}

// RemainingSeconds rounds the remaining lease time up to whole seconds,
// never below zero.
func (e *LockHeldError) RemainingSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	return secs
}

// ValidationError carries field-level detail for malformed input, rejected
// before any state change.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) { e.Fields[field] = msg }

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
