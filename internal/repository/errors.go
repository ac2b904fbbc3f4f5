// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// ticketing service and handlers to distinguish between failure scenarios
// without inspecting SQL driver errors. For example, ErrTicketNotFound maps
// to an HTTP 404 while ErrDuplicateDecision maps to a 409.
package repository

import "errors"

// ErrTicketNotFound is returned when no ticket matches the requested
// identifier or ticket number (soft-deleted tickets are excluded unless a
// method documents otherwise).
var ErrTicketNotFound = errors.New("ticket not found")

// ErrFormNotFound is returned when a ticket has no passenger form. Forms
// are created together with their ticket, so this indicates a
// data-integrity problem rather than ordinary absence.
var ErrFormNotFound = errors.New("passenger form not found")

// ErrPortNotFound is returned when a port code or id does not resolve.
var ErrPortNotFound = errors.New("port not found")

// ErrUserNotFound is returned when a user id or email does not resolve.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateDecision is returned when a decision already exists for the
// (ticket, action_type) pair. The decisions table carries a unique key on
// that pair, so concurrent inserts surface as this error as well.
var ErrDuplicateDecision = errors.New("decision already recorded for this action type")
