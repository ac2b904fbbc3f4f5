package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// TicketRepo provides data access to the tickets table. Soft-deleted rows
// (deleted_at set) are invisible to the lookup methods but still occupy
// their ticket number, which is why MaxNoForPrefixTx scans deleted rows as
// well. All timestamps are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketColumns = `id, ticket_no, status, passenger_type, email, parent_no, children_no, created_at, updated_at, deleted_at`

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan helper.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var (
		t          model.Ticket
		email      sql.NullString
		parentNo   sql.NullString
		childrenNo sql.NullString
		deletedAt  sql.NullTime
	)
	err := row.Scan(&t.ID, &t.TicketNo, &t.Status, &t.PassengerType,
		&email, &parentNo, &childrenNo, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		t.Email = &v
	}
	if parentNo.Valid {
		v := parentNo.String
		t.ParentNo = &v
	}
	if childrenNo.Valid && childrenNo.String != "" {
		if err := json.Unmarshal([]byte(childrenNo.String), &t.ChildrenNo); err != nil {
			return nil, err
		}
	}
	if deletedAt.Valid {
		v := deletedAt.Time
		t.DeletedAt = &v
	}
	return &t, nil
}

// GetByID fetches a live ticket by primary key. Returns ErrTicketNotFound
// when the row is missing or soft-deleted.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ? AND deleted_at IS NULL`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// GetByNo fetches a live ticket by its formatted number.
func (r *TicketRepo) GetByNo(ctx context.Context, ticketNo string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_no = ? AND deleted_at IS NULL`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, ticketNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// GetByNoTx is GetByNo scoped to an existing transaction. Used when
// resolving child tickets during decision propagation so the children are
// read and written under the same transaction as the parent.
func (r *TicketRepo) GetByNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_no = ? AND deleted_at IS NULL FOR UPDATE`
	t, err := scanTicket(tx.QueryRowContext(ctx, q, ticketNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// CreateTx inserts a new ticket within the provided transaction and
// populates the generated ID and timestamps on the passed record. The
// caller must commit or roll back the transaction.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	var children interface{}
	if len(t.ChildrenNo) > 0 {
		b, err := json.Marshal(t.ChildrenNo)
		if err != nil {
			return err
		}
		children = string(b)
	}
	const q = `INSERT INTO tickets (ticket_no, status, passenger_type, email, parent_no, children_no)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.TicketNo, t.Status, t.PassengerType, t.Email, t.ParentNo, children)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT created_at, updated_at FROM tickets WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// SetChildrenTx stores the ordered child ticket numbers on a parent row.
func (r *TicketRepo) SetChildrenTx(ctx context.Context, tx *sql.Tx, id uint64, children []string) error {
	b, err := json.Marshal(children)
	if err != nil {
		return err
	}
	const q = `UPDATE tickets SET children_no = ? WHERE id = ?`
	_, err = tx.ExecContext(ctx, q, string(b), id)
	return err
}

// UpdateStatusTx transitions a ticket to the given status and refreshes
// updated_at within the provided transaction.
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE tickets SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// ClaimPending attempts to take the scan lease on a ticket with a single
// conditional write: the row is moved to "pending" only when it is not
// currently pending, or when the previous lease anchor is at or before
// staleBefore. Returns false when another agent still holds a fresh lease.
// This is the serialization point for concurrent scanners; callers must not
// split it into a read followed by a write.
func (r *TicketRepo) ClaimPending(ctx context.Context, id uint64, staleBefore time.Time) (bool, error) {
	const q = `UPDATE tickets
               SET status = ?, updated_at = UTC_TIMESTAMP()
               WHERE id = ? AND deleted_at IS NULL
                 AND (status <> ? OR updated_at <= ?)`
	res, err := r.db.ExecContext(ctx, q, model.StatusPending, id, model.StatusPending,
		staleBefore.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MaxNoForPrefixTx returns the highest existing ticket number for a prefix,
// or "" when none exist. The scan intentionally includes soft-deleted rows
// so freed numbers are never reissued, and locks the max row for the
// duration of the transaction to serialize number allocation.
func (r *TicketRepo) MaxNoForPrefixTx(ctx context.Context, tx *sql.Tx, prefix byte) (string, error) {
	const q = `SELECT ticket_no FROM tickets WHERE ticket_no LIKE ?
               ORDER BY ticket_no DESC LIMIT 1 FOR UPDATE`
	var no string
	err := tx.QueryRowContext(ctx, q, string(prefix)+"%").Scan(&no)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return no, nil
}

// ExistsNoTx reports whether a ticket number is already taken, including by
// soft-deleted tickets. Used to validate externally supplied mixed-service
// numbers before insert.
func (r *TicketRepo) ExistsNoTx(ctx context.Context, tx *sql.Tx, ticketNo string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM tickets WHERE ticket_no = ?)`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, ticketNo).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetAnyByID fetches a ticket by primary key including soft-deleted rows.
// Used by the administrative purge path, which must be able to remove a
// ticket that was already logically deleted.
func (r *TicketRepo) GetAnyByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	t, err := scanTicket(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return t, err
}

// SoftDelete marks a ticket as logically removed. The row, its form and its
// decisions remain retrievable until an explicit purge.
func (r *TicketRepo) SoftDelete(ctx context.Context, id uint64) error {
	const q = `UPDATE tickets SET deleted_at = UTC_TIMESTAMP() WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// DeleteTx hard-deletes a ticket row within the provided transaction. Only
// the administrative purge path calls this, after removing the decisions
// and passenger form that reference the row.
func (r *TicketRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM tickets WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
