package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// UserRepo provides read access to the users table. Account management
// (creation, role changes, port reassignment) belongs to the admin surface
// outside this service; the core only authenticates users and resolves the
// acting agent's port.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the provided database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, port_id, status, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		portID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &portID, &u.Status, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if portID.Valid {
		v := uint64(portID.Int64)
		u.PortID = &v
	}
	return &u, nil
}

// GetByID fetches a user by primary key.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByEmail fetches a user by email for login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}
