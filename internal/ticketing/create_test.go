package ticketing

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

func validForm() FormParams {
	return FormParams{
		LastName:         "Moreau",
		FirstName:        "Claire",
		DateOfBirth:      "1988-04-12",
		Sex:              "F",
		BirthPlace:       "Lyon",
		PassportNumber:   "P1234567",
		CarrierNumber:    "AF442",
		PortOfEntryCode:  "PAP",
		ResidenceStreet:  "12 Rue des Lilas",
		ResidenceCity:    "Lyon",
		ResidenceCountry: "France",
		LocalStreet:      "45 Avenue Centrale",
		LocalCity:        "Port-au-Prince",
		LocalPhone:       "+509 1234 5678",
	}
}

func TestCreateTicket_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateTicket(context.Background(), CreateTicketParams{
		PassengerType: "alien",
		Form:          FormParams{DateOfBirth: "not-a-date"},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "passenger_type")
	assert.Contains(t, ve.Fields, "last_name")
	assert.Contains(t, ve.Fields, "date_of_birth")
	assert.Contains(t, ve.Fields, "sex")
	assert.Contains(t, ve.Fields, "passport_number")
	f.ports.AssertNotCalled(t, "GetActiveByCode", mock.Anything, mock.Anything)
}

func TestCreateTicket_UnknownPort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(nil, errors.New("no rows"))

	_, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerForeigner,
		Form:          validForm(),
	})
	assert.ErrorIs(t, err, ErrUnknownPort)
}

func TestCreateTicket_Standalone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(&model.Port{ID: 7, Code: "PAP"}, nil)
	f.tickets.On("MaxNoForPrefixTx", ctx, (*sql.Tx)(nil), byte('J')).Return("", nil)
	f.tickets.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.Ticket")).
		Run(func(args mock.Arguments) { args.Get(2).(*model.Ticket).ID = 101 }).
		Return(nil)
	f.forms.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.PassengerForm")).Return(nil)

	res, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerForeigner,
		Form:          validForm(),
	})
	require.NoError(t, err)
	assert.Equal(t, "J00000001", res.TicketNo)
	assert.Equal(t, "P1234567", res.PassportNumber)
	assert.Empty(t, res.ChildrenTickets)

	// No family: the children list and family blob must stay untouched.
	f.tickets.AssertNotCalled(t, "SetChildrenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.forms.AssertNotCalled(t, "SetFamilyTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTicket_FamilyChildrenMintServiceNumbers(t *testing.T) {
	f := newFixture(WithPrefix('C'))
	ctx := context.Background()

	members := []model.FamilyMember{
		{LastName: "Moreau", FirstName: "Jules", DateOfBirth: "2015-09-01", Sex: "M"},
		{LastName: "Moreau", FirstName: "Nina", DateOfBirth: "2018-01-20", Sex: "F", PassportNumber: "P7654321"},
	}

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(&model.Port{ID: 7, Code: "PAP"}, nil)
	// Parent number comes from the external system; children still get
	// locally minted 'C' numbers.
	f.tickets.On("ExistsNoTx", ctx, (*sql.Tx)(nil), "G000000AA").Return(false, nil)
	f.tickets.On("MaxNoForPrefixTx", ctx, (*sql.Tx)(nil), byte('C')).Return("", nil).Once()
	f.tickets.On("MaxNoForPrefixTx", ctx, (*sql.Tx)(nil), byte('C')).Return("C00000001", nil).Once()

	var nextID uint64 = 200
	var created []*model.Ticket
	f.tickets.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.Ticket")).
		Run(func(args mock.Arguments) {
			tk := args.Get(2).(*model.Ticket)
			nextID++
			tk.ID = nextID
			created = append(created, tk)
		}).
		Return(nil)
	var forms []*model.PassengerForm
	f.forms.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.PassengerForm")).
		Run(func(args mock.Arguments) { forms = append(forms, args.Get(2).(*model.PassengerForm)) }).
		Return(nil)
	f.tickets.On("SetChildrenTx", ctx, (*sql.Tx)(nil), uint64(201), []string{"C00000001", "C00000002"}).Return(nil)
	f.forms.On("SetFamilyTx", ctx, (*sql.Tx)(nil), uint64(201), members).Return(nil)

	res, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerForeigner,
		PreassignedNo: "G000000AA",
		Form:          validForm(),
		FamilyMembers: members,
	})
	require.NoError(t, err)
	assert.Equal(t, "G000000AA", res.TicketNo)
	assert.Equal(t, []string{"C00000001", "C00000002"}, res.ChildrenTickets)

	require.Len(t, created, 3)
	for _, child := range created[1:] {
		require.NotNil(t, child.ParentNo)
		assert.Equal(t, "G000000AA", *child.ParentNo)
		assert.Equal(t, model.StatusDraft, child.Status)
	}

	// Child forms inherit travel data but carry the member's identity.
	require.Len(t, forms, 3)
	assert.Equal(t, "Jules", forms[1].FirstName)
	assert.Equal(t, "P1234567", forms[1].PassportNumber) // none of their own
	assert.Equal(t, "P7654321", forms[2].PassportNumber) // their own wins
	assert.Empty(t, forms[1].FamilyMembers)

	f.tickets.AssertExpectations(t)
	f.forms.AssertExpectations(t)
}

func TestCreateTicket_PreassignedMustBeMixed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(&model.Port{ID: 7, Code: "PAP"}, nil)

	_, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerNational,
		PreassignedNo: "J00000005",
		Form:          validForm(),
	})
	assert.ErrorIs(t, err, ErrInvalidTicketNo)

	_, err = f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerNational,
		PreassignedNo: "G123",
		Form:          validForm(),
	})
	assert.ErrorIs(t, err, ErrInvalidTicketNo)
}

func TestCreateTicket_PreassignedTaken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(&model.Port{ID: 7, Code: "PAP"}, nil)
	f.tickets.On("ExistsNoTx", ctx, (*sql.Tx)(nil), "G00000001").Return(true, nil)

	_, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerNational,
		PreassignedNo: "G00000001",
		Form:          validForm(),
	})
	assert.ErrorIs(t, err, ErrTicketNoTaken)
}

func TestCreateTicket_ChildFailureAbortsUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	boom := errors.New("duplicate entry")

	f.ports.On("GetActiveByCode", ctx, "PAP").Return(&model.Port{ID: 7, Code: "PAP"}, nil)
	f.tickets.On("MaxNoForPrefixTx", ctx, (*sql.Tx)(nil), byte('J')).Return("", nil).Once()
	f.tickets.On("MaxNoForPrefixTx", ctx, (*sql.Tx)(nil), byte('J')).Return("J00000001", nil).Once()
	// Parent insert succeeds, the child insert blows up.
	f.tickets.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.Ticket")).
		Run(func(args mock.Arguments) { args.Get(2).(*model.Ticket).ID = 301 }).
		Return(nil).Once()
	f.forms.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.PassengerForm")).Return(nil).Once()
	f.tickets.On("CreateTx", ctx, (*sql.Tx)(nil), mock.AnythingOfType("*model.Ticket")).Return(boom).Once()

	_, err := f.svc.CreateTicket(ctx, CreateTicketParams{
		PassengerType: model.PassengerForeigner,
		Form:          validForm(),
		FamilyMembers: []model.FamilyMember{
			{LastName: "Moreau", FirstName: "Jules", DateOfBirth: "2015-09-01", Sex: "M"},
		},
	})
	// The transaction body's error reaches the caller; TxManager rolls the
	// whole unit back, parent included.
	assert.ErrorIs(t, err, boom)
	f.tickets.AssertNotCalled(t, "SetChildrenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
