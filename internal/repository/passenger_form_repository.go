package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// PassengerFormRepo provides data access to the passenger_forms table. Each
// form belongs to exactly one ticket; the family_members and declared_items
// columns hold opaque JSON blobs rather than normalized rows.
type PassengerFormRepo struct {
	db *sql.DB
}

// NewPassengerFormRepo returns a new PassengerFormRepo bound to the given database.
func NewPassengerFormRepo(db *sql.DB) *PassengerFormRepo { return &PassengerFormRepo{db: db} }

const formColumns = `id, ticket_id, last_name, first_name, date_of_birth, sex, birth_place,
    nationality, passport_number, number_of_family_members, family_members, declared_items,
    carrier_number, port_of_entry, travel_date, travel_purpose, visa_number, visa_issued_at,
    residence_street, residence_city, residence_country, local_street, local_city, local_phone,
    created_at, updated_at`

func scanForm(row rowScanner) (*model.PassengerForm, error) {
	var (
		f             model.PassengerForm
		nationality   sql.NullString
		familyBlob    sql.NullString
		declaredBlob  sql.NullString
		travelDate    sql.NullTime
		travelPurpose sql.NullString
		visaNumber    sql.NullString
		visaIssuedAt  sql.NullTime
	)
	err := row.Scan(&f.ID, &f.TicketID, &f.LastName, &f.FirstName, &f.DateOfBirth, &f.Sex,
		&f.BirthPlace, &nationality, &f.PassportNumber, &f.NumberOfFamilyMembers,
		&familyBlob, &declaredBlob, &f.CarrierNumber, &f.PortOfEntry, &travelDate,
		&travelPurpose, &visaNumber, &visaIssuedAt, &f.ResidenceStreet, &f.ResidenceCity,
		&f.ResidenceCountry, &f.LocalStreet, &f.LocalCity, &f.LocalPhone,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if nationality.Valid {
		v := nationality.String
		f.Nationality = &v
	}
	if familyBlob.Valid && familyBlob.String != "" {
		if err := json.Unmarshal([]byte(familyBlob.String), &f.FamilyMembers); err != nil {
			return nil, err
		}
	}
	if declaredBlob.Valid && declaredBlob.String != "" {
		if err := json.Unmarshal([]byte(declaredBlob.String), &f.DeclaredItems); err != nil {
			return nil, err
		}
	}
	if travelDate.Valid {
		v := travelDate.Time
		f.TravelDate = &v
	}
	if travelPurpose.Valid {
		v := travelPurpose.String
		f.TravelPurpose = &v
	}
	if visaNumber.Valid {
		v := visaNumber.String
		f.VisaNumber = &v
	}
	if visaIssuedAt.Valid {
		v := visaIssuedAt.Time
		f.VisaIssuedAt = &v
	}
	return &f, nil
}

// GetByTicketID fetches the form owned by a ticket. Returns ErrFormNotFound
// when the ticket has no form, which callers treat as a data-integrity
// anomaly rather than ordinary absence.
func (r *PassengerFormRepo) GetByTicketID(ctx context.Context, ticketID uint64) (*model.PassengerForm, error) {
	const q = `SELECT ` + formColumns + ` FROM passenger_forms WHERE ticket_id = ?`
	f, err := scanForm(r.db.QueryRowContext(ctx, q, ticketID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFormNotFound
	}
	return f, err
}

// CreateTx inserts a form within the provided transaction and populates the
// generated ID on the record. The ticket row must already exist.
func (r *PassengerFormRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.PassengerForm) error {
	familyBlob, err := marshalOrNil(f.FamilyMembers, len(f.FamilyMembers) > 0)
	if err != nil {
		return err
	}
	declaredBlob, err := marshalOrNil(f.DeclaredItems, len(f.DeclaredItems) > 0)
	if err != nil {
		return err
	}
	const q = `INSERT INTO passenger_forms
        (ticket_id, last_name, first_name, date_of_birth, sex, birth_place, nationality,
         passport_number, number_of_family_members, family_members, declared_items,
         carrier_number, port_of_entry, travel_date, travel_purpose, visa_number, visa_issued_at,
         residence_street, residence_city, residence_country, local_street, local_city, local_phone)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		f.TicketID, f.LastName, f.FirstName, f.DateOfBirth.UTC().Format("2006-01-02"), f.Sex,
		f.BirthPlace, f.Nationality, f.PassportNumber, f.NumberOfFamilyMembers,
		familyBlob, declaredBlob, f.CarrierNumber, f.PortOfEntry,
		nullDate(f.TravelDate), f.TravelPurpose, f.VisaNumber, nullDate(f.VisaIssuedAt),
		f.ResidenceStreet, f.ResidenceCity, f.ResidenceCountry,
		f.LocalStreet, f.LocalCity, f.LocalPhone)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// ApplyPatchTx updates only the fields present on the patch, within the
// provided transaction. An empty patch is a no-op. Array-valued fields
// replace the stored blob wholesale; family_members also refreshes the
// number_of_family_members counter.
func (r *PassengerFormRepo) ApplyPatchTx(ctx context.Context, tx *sql.Tx, ticketID uint64, p *model.FormPatch) error {
	if p.Empty() {
		return nil
	}
	sets := make([]string, 0, 16)
	args := make([]interface{}, 0, 16)
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.LastName != nil {
		add("last_name", *p.LastName)
	}
	if p.FirstName != nil {
		add("first_name", *p.FirstName)
	}
	if p.DateOfBirth != nil {
		d, err := time.Parse("2006-01-02", *p.DateOfBirth)
		if err != nil {
			return err
		}
		add("date_of_birth", d.Format("2006-01-02"))
	}
	if p.Nationality != nil {
		add("nationality", *p.Nationality)
	}
	if p.PassportNumber != nil {
		add("passport_number", *p.PassportNumber)
	}
	if p.CarrierNumber != nil {
		add("carrier_number", *p.CarrierNumber)
	}
	if p.PortOfEntryID != nil {
		add("port_of_entry", *p.PortOfEntryID)
	}
	if p.ResidenceStreet != nil {
		add("residence_street", *p.ResidenceStreet)
	}
	if p.ResidenceCity != nil {
		add("residence_city", *p.ResidenceCity)
	}
	if p.ResidenceCountry != nil {
		add("residence_country", *p.ResidenceCountry)
	}
	if p.LocalStreet != nil {
		add("local_street", *p.LocalStreet)
	}
	if p.LocalCity != nil {
		add("local_city", *p.LocalCity)
	}
	if p.LocalPhone != nil {
		add("local_phone", *p.LocalPhone)
	}
	if p.FamilyMembers != nil {
		b, err := json.Marshal(p.FamilyMembers)
		if err != nil {
			return err
		}
		add("family_members", string(b))
		add("number_of_family_members", len(p.FamilyMembers))
	}
	if p.DeclaredItems != nil {
		b, err := json.Marshal(p.DeclaredItems)
		if err != nil {
			return err
		}
		add("declared_items", string(b))
	}
	query := "UPDATE passenger_forms SET " + strings.Join(sets, ", ") + " WHERE ticket_id = ?"
	args = append(args, ticketID)
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SetFamilyTx stores the raw family-member payload and its count on a
// parent's form. Called once at creation time after child tickets are made.
func (r *PassengerFormRepo) SetFamilyTx(ctx context.Context, tx *sql.Tx, ticketID uint64, members []model.FamilyMember) error {
	b, err := json.Marshal(members)
	if err != nil {
		return err
	}
	const q = `UPDATE passenger_forms SET family_members = ?, number_of_family_members = ? WHERE ticket_id = ?`
	_, err = tx.ExecContext(ctx, q, string(b), len(members), ticketID)
	return err
}

// DeleteByTicketTx removes the form owned by a ticket within the provided
// transaction. Part of the administrative purge path.
func (r *PassengerFormRepo) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	const q = `DELETE FROM passenger_forms WHERE ticket_id = ?`
	_, err := tx.ExecContext(ctx, q, ticketID)
	return err
}

func marshalOrNil(v interface{}, present bool) (interface{}, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}
