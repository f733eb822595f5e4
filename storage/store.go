// Package storage implements the transactional shop schema over Postgres:
// the catalog store, the pending-order ledger, and the order writer.
package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store provides sqlx-backed access to the shop schema.
type Store struct {
	db *sqlx.DB
}

// New wraps an already-connected database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
