package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/border-control-ticketing/internal/model"
	"github.com/iliyamo/border-control-ticketing/internal/repository"
)

var scanNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() Option { return WithClock(func() time.Time { return scanNow }) }

func TestScan_InvalidAction(t *testing.T) {
	f := newFixture(fixedClock())

	_, err := f.svc.Scan(context.Background(), "J00000001", "transit")

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "action_type")
}

func TestScan_TicketNotFound(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "J0000FFFF").Return(nil, repository.ErrTicketNotFound)

	_, err := f.svc.Scan(ctx, "J0000FFFF", model.ActionArrival)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
}

func TestScan_ArrivalOnDepartedTicket(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusAcceptedDeparture,
	}, nil)

	_, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)
	assert.ErrorIs(t, err, ErrTicketFinalized)
}

func TestScan_AlreadyDecided(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusAcceptedArrival,
	}, nil)
	f.decisions.On("ExistsForAction", ctx, uint64(1), model.ActionArrival).Return(true, nil)

	_, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestScan_FreshLeaseHeld(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	// Leased 30 seconds ago; 90 seconds of the two-minute window remain.
	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusPending,
		UpdatedAt: scanNow.Add(-30 * time.Second),
	}, nil)
	f.decisions.On("ExistsForAction", ctx, uint64(1), model.ActionArrival).Return(false, nil)

	_, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)

	var lh *LockHeldError
	require.ErrorAs(t, err, &lh)
	assert.Equal(t, 90, lh.RemainingSeconds())
	f.tickets.AssertNotCalled(t, "ClaimPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestScan_ExpiredLeaseReclaimed(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusPending,
		UpdatedAt: scanNow.Add(-3 * time.Minute),
	}, nil)
	f.decisions.On("ExistsForAction", ctx, uint64(1), model.ActionArrival).Return(false, nil)
	f.tickets.On("ClaimPending", ctx, uint64(1), scanNow.Add(-ScanLeaseWindow)).Return(true, nil)
	f.forms.On("GetByTicketID", ctx, uint64(1)).Return(&model.PassengerForm{TicketID: 1, PortOfEntry: 7}, nil)
	f.ports.On("GetByID", ctx, uint64(7)).Return(&model.Port{ID: 7, Code: "PAP"}, nil)
	f.ports.On("ListActive", ctx).Return([]model.Port{{ID: 7, Code: "PAP"}}, nil)

	res, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Ticket.Status)
	assert.Equal(t, scanNow, res.Ticket.UpdatedAt)
	assert.Equal(t, uint64(7), res.PortOfEntry.ID)
	assert.Len(t, res.ActivePorts, 1)
}

func TestScan_Draft(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "C00000002").Return(&model.Ticket{
		ID: 2, TicketNo: "C00000002", Status: model.StatusDraft,
		UpdatedAt: scanNow.Add(-time.Hour),
	}, nil)
	f.decisions.On("ExistsForAction", ctx, uint64(2), model.ActionDeparture).Return(false, nil)
	f.tickets.On("ClaimPending", ctx, uint64(2), scanNow.Add(-ScanLeaseWindow)).Return(true, nil)
	f.forms.On("GetByTicketID", ctx, uint64(2)).Return(&model.PassengerForm{TicketID: 2, PortOfEntry: 3}, nil)
	f.ports.On("GetByID", ctx, uint64(3)).Return(&model.Port{ID: 3}, nil)
	f.ports.On("ListActive", ctx).Return([]model.Port{}, nil)

	res, err := f.svc.Scan(ctx, "C00000002", model.ActionDeparture)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Ticket.Status)
}

func TestScan_LostClaimRace(t *testing.T) {
	f := newFixture(fixedClock())
	ctx := context.Background()

	stale := &model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusDraft,
		UpdatedAt: scanNow.Add(-time.Hour),
	}
	f.tickets.On("GetByNo", ctx, "J00000001").Return(stale, nil).Once()
	f.decisions.On("ExistsForAction", ctx, uint64(1), model.ActionArrival).Return(false, nil)
	// Another agent won the conditional update between our read and write.
	f.tickets.On("ClaimPending", ctx, uint64(1), scanNow.Add(-ScanLeaseWindow)).Return(false, nil)
	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusPending,
		UpdatedAt: scanNow.Add(-5 * time.Second),
	}, nil).Once()

	_, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)

	var lh *LockHeldError
	require.ErrorAs(t, err, &lh)
	assert.Equal(t, 115, lh.RemainingSeconds())
}

func TestScan_CustomLeaseWindow(t *testing.T) {
	f := newFixture(fixedClock(), WithLeaseWindow(30*time.Second))
	ctx := context.Background()

	f.tickets.On("GetByNo", ctx, "J00000001").Return(&model.Ticket{
		ID: 1, TicketNo: "J00000001", Status: model.StatusPending,
		UpdatedAt: scanNow.Add(-10 * time.Second),
	}, nil)
	f.decisions.On("ExistsForAction", ctx, uint64(1), model.ActionArrival).Return(false, nil)

	_, err := f.svc.Scan(ctx, "J00000001", model.ActionArrival)

	var lh *LockHeldError
	require.ErrorAs(t, err, &lh)
	assert.Equal(t, 20, lh.RemainingSeconds())
}
