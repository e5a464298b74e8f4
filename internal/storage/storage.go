package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/tolkbridge/booking-be/internal/booking"
	"github.com/tolkbridge/booking-be/shared/postgresql"
)

// Storage is the PostgreSQL implementation of the booking storage
// collaborator.
type Storage struct {
	// ext is either the pooled *sqlx.DB or, inside InTx, a *sqlx.Tx.
	ext    sqlx.ExtContext
	db     *sqlx.DB
	logger *slog.Logger
}

var _ booking.Store = (*Storage)(nil)

// New creates a Storage backed by the given PostgreSQL client.
func New(pg *postgresql.Client, logger *slog.Logger) *Storage {
	db := pg.DB()
	return &Storage{
		ext:    db,
		db:     db,
		logger: logger,
	}
}

// InTx runs fn against a Storage bound to one transaction. Nested calls
// reuse the surrounding transaction.
func (s *Storage) InTx(ctx context.Context, fn func(booking.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return booking.NewStorageError(fmt.Errorf("begin transaction: %w", err))
	}

	inner := &Storage{ext: tx, logger: s.logger}
	if err := fn(inner); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transaction",
				slog.String("error", rbErr.Error()),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return booking.NewStorageError(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
