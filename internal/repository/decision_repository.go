package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// DecisionRepo provides data access to the decisions table. Decision rows
// are immutable once written; the only delete path is the administrative
// purge of a whole ticket.
type DecisionRepo struct {
	db *sql.DB
}

// NewDecisionRepo returns a new DecisionRepo bound to the provided database.
func NewDecisionRepo(db *sql.DB) *DecisionRepo { return &DecisionRepo{db: db} }

const decisionColumns = `id, ticket_id, user_id, action_type, decision, port_of_action, comment, created_at`

func scanDecision(row rowScanner) (*model.Decision, error) {
	var (
		d       model.Decision
		comment sql.NullString
	)
	err := row.Scan(&d.ID, &d.TicketID, &d.UserID, &d.ActionType, &d.Decision,
		&d.PortOfAction, &comment, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if comment.Valid {
		v := comment.String
		d.Comment = &v
	}
	return &d, nil
}

// ExistsForAction reports whether a decision is already recorded for the
// (ticket, action type) pair.
func (r *DecisionRepo) ExistsForAction(ctx context.Context, ticketID uint64, actionType string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM decisions WHERE ticket_id = ? AND action_type = ?)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, ticketID, actionType).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsForActionTx is ExistsForAction scoped to an existing transaction,
// so the duplicate guard and the subsequent insert observe the same state.
func (r *DecisionRepo) ExistsForActionTx(ctx context.Context, tx *sql.Tx, ticketID uint64, actionType string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM decisions WHERE ticket_id = ? AND action_type = ?)`
	var exists bool
	if err := tx.QueryRowContext(ctx, q, ticketID, actionType).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a decision within the provided transaction and populates
// the generated ID on the record. The unique key on (ticket_id, action_type)
// turns a lost race between two concurrent recorders into
// ErrDuplicateDecision instead of a second row.
func (r *DecisionRepo) CreateTx(ctx context.Context, tx *sql.Tx, d *model.Decision) error {
	const q = `INSERT INTO decisions (ticket_id, user_id, action_type, decision, port_of_action, comment)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, d.TicketID, d.UserID, d.ActionType, d.Decision, d.PortOfAction, d.Comment)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 { // duplicate key
			return ErrDuplicateDecision
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	const sel = `SELECT created_at FROM decisions WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, d.ID).Scan(&d.CreatedAt)
}

// ListByTicket returns all decisions for a ticket ordered by creation time.
// A ticket has at most two rows (arrival and departure).
func (r *DecisionRepo) ListByTicket(ctx context.Context, ticketID uint64) ([]model.Decision, error) {
	const q = `SELECT ` + decisionColumns + ` FROM decisions WHERE ticket_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListByUser returns the most recent decisions recorded by a user, capped
// at limit. Feeds the agent history read-side.
func (r *DecisionRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Decision, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + decisionColumns + ` FROM decisions WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteByTicketTx removes all decisions for a ticket within the provided
// transaction. Part of the administrative purge path.
func (r *DecisionRepo) DeleteByTicketTx(ctx context.Context, tx *sql.Tx, ticketID uint64) error {
	const q = `DELETE FROM decisions WHERE ticket_id = ?`
	_, err := tx.ExecContext(ctx, q, ticketID)
	return err
}
