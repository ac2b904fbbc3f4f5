package ticketing

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Ticket numbers are <prefix><8 uppercase hex digits>, e.g. "J00000001".
// Numbering starts at 1 per prefix and the 8-digit space tops out at
// maxTicketSeq (4294967295 tickets per prefix).
const (
	ticketNoLen  = 9
	maxTicketSeq = uint64(0xFFFFFFFF)
)

// FormatTicketNo encodes a prefix and sequence value into the wire format.
func FormatTicketNo(prefix byte, seq uint64) string {
	return fmt.Sprintf("%c%08X", prefix, seq)
}

// ParseTicketNo splits a ticket number into prefix and sequence value. The
// hex suffix must be exactly eight uppercase hex digits.
func ParseTicketNo(ticketNo string) (byte, uint64, error) {
	if len(ticketNo) != ticketNoLen {
		return 0, 0, ErrInvalidTicketNo
	}
	suffix := ticketNo[1:]
	if suffix != strings.ToUpper(suffix) {
		return 0, 0, ErrInvalidTicketNo
	}
	seq, err := strconv.ParseUint(suffix, 16, 64)
	if err != nil {
		return 0, 0, ErrInvalidTicketNo
	}
	return ticketNo[0], seq, nil
}

// GeneratedPrefix reports whether this service mints numbers for the prefix.
// 'G' is deliberately excluded: mixed-service numbers are only ever supplied
// by the collaborating subsystem.
func GeneratedPrefix(p byte) bool { return p == 'J' || p == 'C' }

// NumberSource is the slice of the ticket store the generator needs: the
// highest existing number for a prefix, read under the caller's transaction
// with the max row locked, soft-deleted tickets included.
type NumberSource interface {
	MaxNoForPrefixTx(ctx context.Context, tx *sql.Tx, prefix byte) (string, error)
}

// NumberGenerator allocates the next ticket number for a service prefix.
// Generation is find-max-then-increment, which is racy on its own, so the
// generator serializes callers per prefix with a mutex and relies on the
// source locking the max row until the surrounding transaction commits.
// The tickets.ticket_no unique key is the final backstop.
type NumberGenerator struct {
	src NumberSource

	mu       sync.Mutex
	prefixMu map[byte]*sync.Mutex
}

// NewNumberGenerator returns a generator reading existing numbers from src.
func NewNumberGenerator(src NumberSource) *NumberGenerator {
	return &NumberGenerator{src: src, prefixMu: make(map[byte]*sync.Mutex)}
}

func (g *NumberGenerator) lockFor(prefix byte) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.prefixMu[prefix]
	if !ok {
		m = &sync.Mutex{}
		g.prefixMu[prefix] = m
	}
	return m
}

// NextTx allocates the next number for a prefix within the caller's
// transaction. The first number for a fresh prefix is <prefix>00000001.
// Fails with ErrInvalidPrefix for prefixes this service does not mint and
// ErrNumberSpaceExhausted when the 8-hex-digit space overflows.
func (g *NumberGenerator) NextTx(ctx context.Context, tx *sql.Tx, prefix byte) (string, error) {
	if !GeneratedPrefix(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPrefix, string(prefix))
	}
	m := g.lockFor(prefix)
	m.Lock()
	defer m.Unlock()

	last, err := g.src.MaxNoForPrefixTx(ctx, tx, prefix)
	if err != nil {
		return "", err
	}
	seq := uint64(0)
	if last != "" {
		_, seq, err = ParseTicketNo(last)
		if err != nil {
			return "", fmt.Errorf("stored ticket number %q: %w", last, err)
		}
	}
	if seq >= maxTicketSeq {
		return "", fmt.Errorf("%w: %q", ErrNumberSpaceExhausted, string(prefix))
	}
	return FormatTicketNo(prefix, seq+1), nil
}
