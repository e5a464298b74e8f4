package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tolkbridge/booking-be/internal/booking"
)

// AssignmentPolicy is the default, storage-backed implementation of the two
// assignment-history checks. Both are plain boolean capabilities; callers
// that need different business rules plug their own policy.
type AssignmentPolicy struct {
	storage *Storage
}

var _ booking.AssignmentPolicy = (*AssignmentPolicy)(nil)

// NewAssignmentPolicy creates the default policy over the given storage.
func NewAssignmentPolicy(storage *Storage) *AssignmentPolicy {
	return &AssignmentPolicy{storage: storage}
}

// AssignedToParticular reports whether the job is open to this translator:
// either the booking carries no translator restriction, or the restriction
// names them.
func (p *AssignmentPolicy) AssignedToParticular(ctx context.Context, translatorID, jobID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM jobs
			WHERE job_id = $1
			  AND (specific_translator_id IS NULL OR specific_translator_id = $2)
		)
	`

	var open bool
	if err := sqlx.GetContext(ctx, p.storage.ext, &open, query, jobID, translatorID); err != nil {
		return false, booking.NewStorageError(fmt.Errorf("check job restriction: %w", err))
	}
	return open, nil
}

// CanAcceptParticular reports whether the translator's assignment history
// permits taking this job: they must not already hold a live assignment on
// it, nor a live assignment on another job due at the same instant.
func (p *AssignmentPolicy) CanAcceptParticular(ctx context.Context, translatorID, jobID string) (bool, error) {
	query := `
		SELECT NOT EXISTS (
			SELECT 1
			FROM assignments a
			JOIN jobs j ON j.job_id = a.job_id
			WHERE a.translator_id = $1
			  AND a.cancel_at IS NULL
			  AND a.completed_at IS NULL
			  AND (a.job_id = $2 OR j.due = (SELECT due FROM jobs WHERE job_id = $2))
		)
	`

	var ok bool
	if err := sqlx.GetContext(ctx, p.storage.ext, &ok, query, translatorID, jobID); err != nil {
		return false, booking.NewStorageError(fmt.Errorf("check assignment history: %w", err))
	}
	return ok, nil
}
