package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager owns transaction boundaries for multi-row write operations.
// Repositories expose ...Tx methods that take an explicit *sql.Tx; the
// ticketing service composes them inside WithinTx so that a failing step
// rolls back every row written by the unit.
type TxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager bound to the given database.
func NewTxManager(db *sql.DB) *TxManager { return &TxManager{db: db} }

// WithinTx begins a transaction, invokes fn with it and commits when fn
// returns nil. Any error from fn, and any panic, rolls the transaction
// back; panics are re-raised after the rollback.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	err = fn(ctx, tx)
	return err
}
