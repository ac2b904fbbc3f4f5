// Package ticketing implements the ticket lifecycle core: number
// generation, ticket + family creation, the scan-lease workflow, decision
// recording with child propagation, overstay computation and the
// administrative delete/purge operations. The package talks to storage
// through narrow interfaces so the flows can be exercised against mocks.
package ticketing

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// ScanLeaseWindow is the default lifetime of the advisory "pending" lease
// taken when an agent scans a ticket. Expiry is the only release mechanism
// besides a recorded decision.
const ScanLeaseWindow = 2 * time.Minute

// TicketStore is the ticket persistence surface the service depends on.
// *repository.TicketRepo satisfies it.
type TicketStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetAnyByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetByNo(ctx context.Context, ticketNo string) (*model.Ticket, error)
	GetByNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (*model.Ticket, error)
	CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error
	SetChildrenTx(ctx context.Context, tx *sql.Tx, id uint64, children []string) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error
	ClaimPending(ctx context.Context, id uint64, staleBefore time.Time) (bool, error)
	MaxNoForPrefixTx(ctx context.Context, tx *sql.Tx, prefix byte) (string, error)
	ExistsNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (bool, error)
	SoftDelete(ctx context.Context, id uint64) error
	DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error
}

// FormStore is the passenger-form persistence surface.
// *repository.PassengerFormRepo satisfies it.
type FormStore interface {
	GetByTicketID(ctx context.Context, ticketID uint64) (*model.PassengerForm, error)
	CreateTx(ctx context.Context, tx *sql.Tx, f *model.PassengerForm) error
	ApplyPatchTx(ctx context.Context, tx *sql.Tx, ticketID uint64, p *model.FormPatch) error
	SetFamilyTx(ctx context.Context, tx *sql.Tx, ticketID uint64, members []model.FamilyMember) error
	DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error
}

// DecisionStore is the decision persistence surface.
// *repository.DecisionRepo satisfies it.
type DecisionStore interface {
	ExistsForAction(ctx context.Context, ticketID uint64, actionType string) (bool, error)
	ExistsForActionTx(ctx context.Context, tx *sql.Tx, ticketID uint64, actionType string) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, d *model.Decision) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]model.Decision, error)
	DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error
}

// PortStore is the read-only port lookup surface.
// *repository.PortRepo satisfies it.
type PortStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Port, error)
	GetActiveByCode(ctx context.Context, code string) (*model.Port, error)
	ListActive(ctx context.Context) ([]model.Port, error)
}

// Transactor owns the transaction boundary for multi-row writes.
// *repository.TxManager satisfies it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

// Service wires the core flows together. All clock reads go through now so
// tests can pin time.
type Service struct {
	tickets   TicketStore
	forms     FormStore
	decisions DecisionStore
	ports     PortStore
	tx        Transactor
	gen       *NumberGenerator

	prefix      byte // prefix minted for locally created tickets ('J' or 'C')
	leaseWindow time.Duration
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPrefix sets the service prefix used for generated ticket numbers.
func WithPrefix(p byte) Option { return func(s *Service) { s.prefix = p } }

// WithLeaseWindow overrides the scan-lease lifetime.
func WithLeaseWindow(d time.Duration) Option { return func(s *Service) { s.leaseWindow = d } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService constructs the ticketing service. All store dependencies must
// be non-nil.
func NewService(tickets TicketStore, forms FormStore, decisions DecisionStore, ports PortStore, tx Transactor, opts ...Option) *Service {
	if tickets == nil || forms == nil || decisions == nil || ports == nil || tx == nil {
		panic("nil dependency passed to ticketing.NewService")
	}
	s := &Service{
		tickets:     tickets,
		forms:       forms,
		decisions:   decisions,
		ports:       ports,
		tx:          tx,
		gen:         NewNumberGenerator(tickets),
		prefix:      model.PrefixImmigration,
		leaseWindow: ScanLeaseWindow,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if !GeneratedPrefix(s.prefix) {
		panic("ticketing.NewService: service prefix must be 'J' or 'C'")
	}
	return s
}
