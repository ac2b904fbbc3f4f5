package ticketing

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// FormParams is the passenger-form payload submitted at ticket creation.
// Date fields are "2006-01-02" strings; PortOfEntryCode must resolve to an
// active port.
type FormParams struct {
	LastName         string  `json:"last_name"`
	FirstName        string  `json:"first_name"`
	DateOfBirth      string  `json:"date_of_birth"`
	Sex              string  `json:"sex"`
	BirthPlace       string  `json:"birth_place"`
	Nationality      *string `json:"nationality,omitempty"`
	PassportNumber   string  `json:"passport_number"`
	CarrierNumber    string  `json:"carrier_number"`
	PortOfEntryCode  string  `json:"port_of_entry"`
	TravelDate       *string `json:"travel_date,omitempty"`
	TravelPurpose    *string `json:"travel_purpose,omitempty"`
	VisaNumber       *string `json:"visa_number,omitempty"`
	VisaIssuedAt     *string `json:"visa_issued_at,omitempty"`
	ResidenceStreet  string  `json:"residence_street"`
	ResidenceCity    string  `json:"residence_city"`
	ResidenceCountry string  `json:"residence_country"`
	LocalStreet      string  `json:"local_street"`
	LocalCity        string  `json:"local_city"`
	LocalPhone       string  `json:"local_phone"`
}

// CreateTicketParams registers a new travel record, optionally with family
// members that each become a linked child ticket. PreassignedNo carries a
// 'G'-prefixed number minted by the collaborating customs subsystem for
// mixed-service tickets; when empty the service allocates its own number.
type CreateTicketParams struct {
	PassengerType string               `json:"passenger_type"`
	Email         *string              `json:"email,omitempty"`
	PreassignedNo string               `json:"preassigned_no,omitempty"`
	Form          FormParams           `json:"form"`
	FamilyMembers []model.FamilyMember `json:"family_members,omitempty"`
}

// CreateTicketResult is returned to the traveler after registration.
type CreateTicketResult struct {
	TicketNo        string   `json:"ticket_no"`
	PassportNumber  string   `json:"passport_number"`
	ChildrenTickets []string `json:"children_tickets"`
}

func (p *CreateTicketParams) validate() error {
	v := newValidationError()
	if p.PassengerType != model.PassengerNational && p.PassengerType != model.PassengerForeigner {
		v.add("passenger_type", "must be \"national\" or \"foreigner\"")
	}
	if p.Form.LastName == "" {
		v.add("last_name", "required")
	}
	if p.Form.FirstName == "" {
		v.add("first_name", "required")
	}
	if _, err := time.Parse("2006-01-02", p.Form.DateOfBirth); err != nil {
		v.add("date_of_birth", "must be a YYYY-MM-DD date")
	}
	if p.Form.Sex != "M" && p.Form.Sex != "F" {
		v.add("sex", "must be \"M\" or \"F\"")
	}
	if p.Form.BirthPlace == "" {
		v.add("birth_place", "required")
	}
	if p.Form.PassportNumber == "" {
		v.add("passport_number", "required")
	}
	if p.Form.CarrierNumber == "" {
		v.add("carrier_number", "required")
	}
	if p.Form.PortOfEntryCode == "" {
		v.add("port_of_entry", "required")
	}
	if p.Form.ResidenceStreet == "" || p.Form.ResidenceCity == "" || p.Form.ResidenceCountry == "" {
		v.add("residence", "street, city and country are required")
	}
	for i, m := range p.FamilyMembers {
		if m.LastName == "" || m.FirstName == "" {
			v.add(fmt.Sprintf("family_members[%d]", i), "last_name and first_name are required")
		}
		if _, err := time.Parse("2006-01-02", m.DateOfBirth); err != nil {
			v.add(fmt.Sprintf("family_members[%d].date_of_birth", i), "must be a YYYY-MM-DD date")
		}
		if m.Sex != "M" && m.Sex != "F" {
			v.add(fmt.Sprintf("family_members[%d].sex", i), "must be \"M\" or \"F\"")
		}
	}
	return v.orNil()
}

// CreateTicket registers a parent ticket with its passenger form and one
// child ticket per family member, all inside a single transaction. Any
// failure after number allocation rolls back every ticket and form created
// by the call; no orphan children are ever left behind.
func (s *Service) CreateTicket(ctx context.Context, params CreateTicketParams) (*CreateTicketResult, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	port, err := s.ports.GetActiveByCode(ctx, params.Form.PortOfEntryCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPort, params.Form.PortOfEntryCode)
	}

	result := &CreateTicketResult{PassportNumber: params.Form.PassportNumber}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		parentNo, err := s.parentNumberTx(ctx, tx, params.PreassignedNo)
		if err != nil {
			return err
		}

		parent := &model.Ticket{
			TicketNo:      parentNo,
			Status:        model.StatusDraft,
			PassengerType: params.PassengerType,
			Email:         params.Email,
		}
		if err := s.tickets.CreateTx(ctx, tx, parent); err != nil {
			return err
		}
		parentForm, err := buildForm(parent.ID, params.Form, port.ID)
		if err != nil {
			return err
		}
		if err := s.forms.CreateTx(ctx, tx, parentForm); err != nil {
			return err
		}

		childNos := make([]string, 0, len(params.FamilyMembers))
		for _, member := range params.FamilyMembers {
			// Children always get a locally minted service-prefix number,
			// even when the parent carries an external 'G' number.
			childNo, err := s.gen.NextTx(ctx, tx, s.prefix)
			if err != nil {
				return err
			}
			child := &model.Ticket{
				TicketNo:      childNo,
				Status:        model.StatusDraft,
				PassengerType: params.PassengerType,
				ParentNo:      &parentNo,
			}
			if err := s.tickets.CreateTx(ctx, tx, child); err != nil {
				return err
			}
			childForm, err := mergeMemberForm(child.ID, parentForm, member)
			if err != nil {
				return err
			}
			if err := s.forms.CreateTx(ctx, tx, childForm); err != nil {
				return err
			}
			childNos = append(childNos, childNo)
		}

		if len(childNos) > 0 {
			if err := s.tickets.SetChildrenTx(ctx, tx, parent.ID, childNos); err != nil {
				return err
			}
			if err := s.forms.SetFamilyTx(ctx, tx, parent.ID, params.FamilyMembers); err != nil {
				return err
			}
		}

		result.TicketNo = parentNo
		result.ChildrenTickets = childNos
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("create: ticket %s registered with %d child ticket(s)", result.TicketNo, len(result.ChildrenTickets))
	return result, nil
}

// parentNumberTx resolves the parent's ticket number: a validated external
// 'G' number when supplied, a freshly generated service-prefix number
// otherwise.
func (s *Service) parentNumberTx(ctx context.Context, tx *sql.Tx, preassigned string) (string, error) {
	if preassigned == "" {
		return s.gen.NextTx(ctx, tx, s.prefix)
	}
	prefix, _, err := ParseTicketNo(preassigned)
	if err != nil {
		return "", err
	}
	if prefix != model.PrefixMixed {
		return "", fmt.Errorf("%w: preassigned numbers must use prefix 'G'", ErrInvalidTicketNo)
	}
	taken, err := s.tickets.ExistsNoTx(ctx, tx, preassigned)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("%w: %s", ErrTicketNoTaken, preassigned)
	}
	return preassigned, nil
}

func buildForm(ticketID uint64, p FormParams, portID uint64) (*model.PassengerForm, error) {
	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return nil, err
	}
	f := &model.PassengerForm{
		TicketID:         ticketID,
		LastName:         p.LastName,
		FirstName:        p.FirstName,
		DateOfBirth:      dob,
		Sex:              p.Sex,
		BirthPlace:       p.BirthPlace,
		Nationality:      p.Nationality,
		PassportNumber:   p.PassportNumber,
		CarrierNumber:    p.CarrierNumber,
		PortOfEntry:      portID,
		TravelPurpose:    p.TravelPurpose,
		VisaNumber:       p.VisaNumber,
		ResidenceStreet:  p.ResidenceStreet,
		ResidenceCity:    p.ResidenceCity,
		ResidenceCountry: p.ResidenceCountry,
		LocalStreet:      p.LocalStreet,
		LocalCity:        p.LocalCity,
		LocalPhone:       p.LocalPhone,
	}
	if p.TravelDate != nil {
		d, err := time.Parse("2006-01-02", *p.TravelDate)
		if err != nil {
			return nil, err
		}
		f.TravelDate = &d
	}
	if p.VisaIssuedAt != nil {
		d, err := time.Parse("2006-01-02", *p.VisaIssuedAt)
		if err != nil {
			return nil, err
		}
		f.VisaIssuedAt = &d
	}
	return f, nil
}

// mergeMemberForm derives a child's form from the parent's base fields with
// the member's identity fields overriding. Travel, residence and contact
// data are shared across the family.
func mergeMemberForm(ticketID uint64, base *model.PassengerForm, m model.FamilyMember) (*model.PassengerForm, error) {
	dob, err := time.Parse("2006-01-02", m.DateOfBirth)
	if err != nil {
		return nil, err
	}
	f := *base
	f.ID = 0
	f.TicketID = ticketID
	f.LastName = m.LastName
	f.FirstName = m.FirstName
	f.DateOfBirth = dob
	f.Sex = m.Sex
	f.NumberOfFamilyMembers = 0
	f.FamilyMembers = nil
	f.DeclaredItems = nil
	if m.Nationality != "" {
		v := m.Nationality
		f.Nationality = &v
	}
	if m.PassportNumber != "" {
		f.PassportNumber = m.PassportNumber
	}
	return &f, nil
}
