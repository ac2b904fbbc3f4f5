package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// PortRepo provides read access to the ports table. Port management is an
// administrative concern outside this service's core; the ticketing flows
// only resolve and list ports.
type PortRepo struct {
	db *sql.DB
}

// NewPortRepo returns a new PortRepo bound to the provided database.
func NewPortRepo(db *sql.DB) *PortRepo { return &PortRepo{db: db} }

const portColumns = `id, name, code, type, location, status`

func scanPort(row rowScanner) (*model.Port, error) {
	var p model.Port
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Type, &p.Location, &p.Status); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID fetches a port by primary key regardless of status.
func (r *PortRepo) GetByID(ctx context.Context, id uint64) (*model.Port, error) {
	const q = `SELECT ` + portColumns + ` FROM ports WHERE id = ?`
	p, err := scanPort(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPortNotFound
	}
	return p, err
}

// GetActiveByCode resolves a port code to an active port. Inactive ports
// are treated as unknown so new tickets cannot reference them.
func (r *PortRepo) GetActiveByCode(ctx context.Context, code string) (*model.Port, error) {
	const q = `SELECT ` + portColumns + ` FROM ports WHERE code = ? AND status = ?`
	p, err := scanPort(r.db.QueryRowContext(ctx, q, code, model.PortActive))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPortNotFound
	}
	return p, err
}

// ListActive returns all active ports, ordered by name. Returned to agents
// after a successful scan so the decide UI can offer a port-of-action list.
func (r *PortRepo) ListActive(ctx context.Context) ([]model.Port, error) {
	const q = `SELECT ` + portColumns + ` FROM ports WHERE status = ? ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q, model.PortActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Port
	for rows.Next() {
		p, err := scanPort(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
