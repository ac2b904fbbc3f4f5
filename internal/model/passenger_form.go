package model

import "time"

// FamilyMember is one accompanying-traveler entry embedded in a passenger
// form. It mirrors a subset of the passenger fields and is consumed only at
// ticket-creation time, when each member spawns a child ticket; afterwards
// the list is retained on the parent form purely for display.
type FamilyMember struct {
	LastName       string `json:"last_name"`
	FirstName      string `json:"first_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Sex            string `json:"sex"`
	Nationality    string `json:"nationality,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
}

// DeclaredItem is one customs-declaration entry stored as an opaque
// structured blob on the form.
type DeclaredItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Value       string `json:"value,omitempty"`
}

// PassengerForm holds the biographic and travel data for one ticket. The
// owning ticket creates and deletes the form with itself; there is never a
// form without a ticket.
//
// PortOfEntry references the port the traveler is scheduled to use. It can
// legitimately differ from the port recorded on a later Decision
// (port_of_action) when an agent corrects data at decision time; the two
// fields are kept independent.
type PassengerForm struct {
	ID                    uint64         `json:"id"`                       // passenger_forms.id
	TicketID              uint64         `json:"ticket_id"`                // passenger_forms.ticket_id
	LastName              string         `json:"last_name"`                // passenger_forms.last_name
	FirstName             string         `json:"first_name"`               // passenger_forms.first_name
	DateOfBirth           time.Time      `json:"date_of_birth"`            // passenger_forms.date_of_birth
	Sex                   string         `json:"sex"`                      // passenger_forms.sex ("M" or "F")
	BirthPlace            string         `json:"birth_place"`              // passenger_forms.birth_place
	Nationality           *string        `json:"nationality,omitempty"`    // passenger_forms.nationality (nullable)
	PassportNumber        string         `json:"passport_number"`          // passenger_forms.passport_number
	NumberOfFamilyMembers int            `json:"number_of_family_members"` // passenger_forms.number_of_family_members
	FamilyMembers         []FamilyMember `json:"family_members,omitempty"` // passenger_forms.family_members (JSON blob)
	DeclaredItems         []DeclaredItem `json:"declared_items,omitempty"` // passenger_forms.declared_items (JSON blob)
	CarrierNumber         string         `json:"carrier_number"`           // passenger_forms.carrier_number
	PortOfEntry           uint64         `json:"port_of_entry"`            // passenger_forms.port_of_entry (FK ports.id)
	TravelDate            *time.Time     `json:"travel_date,omitempty"`    // passenger_forms.travel_date (nullable)
	TravelPurpose         *string        `json:"travel_purpose,omitempty"` // passenger_forms.travel_purpose (nullable)
	VisaNumber            *string        `json:"visa_number,omitempty"`    // passenger_forms.visa_number (nullable)
	VisaIssuedAt          *time.Time     `json:"visa_issued_at,omitempty"` // passenger_forms.visa_issued_at (nullable)
	ResidenceStreet       string         `json:"residence_street"`         // passenger_forms.residence_street
	ResidenceCity         string         `json:"residence_city"`           // passenger_forms.residence_city
	ResidenceCountry      string         `json:"residence_country"`        // passenger_forms.residence_country
	LocalStreet           string         `json:"local_street"`             // passenger_forms.local_street
	LocalCity             string         `json:"local_city"`               // passenger_forms.local_city
	LocalPhone            string         `json:"local_phone"`              // passenger_forms.local_phone
	CreatedAt             time.Time      `json:"created_at"`               // passenger_forms.created_at
	UpdatedAt             time.Time      `json:"updated_at"`               // passenger_forms.updated_at
}

// FormPatch is the explicit partial-update payload agents may submit before
// or together with a decision. Only non-nil fields are applied. Array-valued
// fields replace the stored blob wholesale.
type FormPatch struct {
	LastName         *string        `json:"last_name,omitempty"`
	FirstName        *string        `json:"first_name,omitempty"`
	DateOfBirth      *string        `json:"date_of_birth,omitempty"`
	Nationality      *string        `json:"nationality,omitempty"`
	PassportNumber   *string        `json:"passport_number,omitempty"`
	CarrierNumber    *string        `json:"carrier_number,omitempty"`
	PortOfEntryID    *uint64        `json:"port_of_entry_id,omitempty"`
	ResidenceStreet  *string        `json:"residence_street,omitempty"`
	ResidenceCity    *string        `json:"residence_city,omitempty"`
	ResidenceCountry *string        `json:"residence_country,omitempty"`
	LocalStreet      *string        `json:"local_street,omitempty"`
	LocalCity        *string        `json:"local_city,omitempty"`
	LocalPhone       *string        `json:"local_phone,omitempty"`
	FamilyMembers    []FamilyMember `json:"family_members,omitempty"`
	DeclaredItems    []DeclaredItem `json:"declared_items,omitempty"`
}

// Empty reports whether the patch carries no changes at all.
func (p *FormPatch) Empty() bool {
	if p == nil {
		return true
	}
	return p.LastName == nil && p.FirstName == nil && p.DateOfBirth == nil &&
		p.Nationality == nil && p.PassportNumber == nil && p.CarrierNumber == nil &&
		p.PortOfEntryID == nil && p.ResidenceStreet == nil && p.ResidenceCity == nil &&
		p.ResidenceCountry == nil && p.LocalStreet == nil && p.LocalCity == nil &&
		p.LocalPhone == nil && p.FamilyMembers == nil && p.DeclaredItems == nil
}
