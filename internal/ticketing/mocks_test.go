package ticketing

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// MockTicketStore is a mock implementation of TicketStore.
type MockTicketStore struct {
	mock.Mock
}

func (m *MockTicketStore) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketStore) GetAnyByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketStore) GetByNo(ctx context.Context, ticketNo string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketStore) GetByNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (*model.Ticket, error) {
	args := m.Called(ctx, tx, ticketNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *MockTicketStore) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *MockTicketStore) SetChildrenTx(ctx context.Context, tx *sql.Tx, id uint64, children []string) error {
	args := m.Called(ctx, tx, id, children)
	return args.Error(0)
}

func (m *MockTicketStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockTicketStore) ClaimPending(ctx context.Context, id uint64, staleBefore time.Time) (bool, error) {
	args := m.Called(ctx, id, staleBefore)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketStore) MaxNoForPrefixTx(ctx context.Context, tx *sql.Tx, prefix byte) (string, error) {
	args := m.Called(ctx, tx, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockTicketStore) ExistsNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (bool, error) {
	args := m.Called(ctx, tx, ticketNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketStore) SoftDelete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTicketStore) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockFormStore is a mock implementation of FormStore.
type MockFormStore struct {
	mock.Mock
}

func (m *MockFormStore) GetByTicketID(ctx context.Context, ticketID uint64) (*model.PassengerForm, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PassengerForm), args.Error(1)
}

func (m *MockFormStore) CreateTx(ctx context.Context, tx *sql.Tx, f *model.PassengerForm) error {
	args := m.Called(ctx, tx, f)
	return args.Error(0)
}

func (m *MockFormStore) ApplyPatchTx(ctx context.Context, tx *sql.Tx, ticketID uint64, p *model.FormPatch) error {
	args := m.Called(ctx, tx, ticketID, p)
	return args.Error(0)
}

func (m *MockFormStore) SetFamilyTx(ctx context.Context, tx *sql.Tx, ticketID uint64, members []model.FamilyMember) error {
	args := m.Called(ctx, tx, ticketID, members)
	return args.Error(0)
}

func (m *MockFormStore) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	args := m.Called(ctx, tx, ticketID)
	return args.Error(0)
}

// MockDecisionStore is a mock implementation of DecisionStore.
type MockDecisionStore struct {
	mock.Mock
}

func (m *MockDecisionStore) ExistsForAction(ctx context.Context, ticketID uint64, actionType string) (bool, error) {
	args := m.Called(ctx, ticketID, actionType)
	return args.Bool(0), args.Error(1)
}

func (m *MockDecisionStore) ExistsForActionTx(ctx context.Context, tx *sql.Tx, ticketID uint64, actionType string) (bool, error) {
	args := m.Called(ctx, tx, ticketID, actionType)
	return args.Bool(0), args.Error(1)
}

func (m *MockDecisionStore) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Decision) error {
	args := m.Called(ctx, tx, d)
	return args.Error(0)
}

func (m *MockDecisionStore) ListByTicket(ctx context.Context, ticketID uint64) ([]model.Decision, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Decision), args.Error(1)
}

func (m *MockDecisionStore) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	args := m.Called(ctx, tx, ticketID)
	return args.Error(0)
}

// MockPortStore is a mock implementation of PortStore.
type MockPortStore struct {
	mock.Mock
}

func (m *MockPortStore) GetByID(ctx context.Context, id uint64) (*model.Port, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Port), args.Error(1)
}

func (m *MockPortStore) GetActiveByCode(ctx context.Context, code string) (*model.Port, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Port), args.Error(1)
}

func (m *MockPortStore) ListActive(ctx context.Context) ([]model.Port, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Port), args.Error(1)
}

// stubTx runs transaction bodies directly with a nil *sql.Tx. The stores
// under test are mocks, so no real transaction is needed; the body's error
// simply propagates the way TxManager's rollback path would.
type stubTx struct{}

func (stubTx) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return fn(ctx, nil)
}

type fixture struct {
	tickets   *MockTicketStore
	forms     *MockFormStore
	decisions *MockDecisionStore
	ports     *MockPortStore
	svc       *Service
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		tickets:   &MockTicketStore{},
		forms:     &MockFormStore{},
		decisions: &MockDecisionStore{},
		ports:     &MockPortStore{},
	}
	f.svc = NewService(f.tickets, f.forms, f.decisions, f.ports, stubTx{}, opts...)
	return f
}

func strptr(s string) *string { return &s }
