package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tolkbridge/booking-be/internal/booking"
)

const assignmentColumns = `
	assignment_id, job_id, translator_id, created_at, updated_at,
	will_expire_at, cancel_at, completed_at, completed_by`

type assignmentRow struct {
	AssignmentID string         `db:"assignment_id"`
	JobID        string         `db:"job_id"`
	TranslatorID string         `db:"translator_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	WillExpireAt time.Time      `db:"will_expire_at"`
	CancelAt     sql.NullTime   `db:"cancel_at"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	CompletedBy  sql.NullString `db:"completed_by"`
}

func (r *assignmentRow) toDomain() *booking.Assignment {
	a := &booking.Assignment{
		ID:           r.AssignmentID,
		JobID:        r.JobID,
		TranslatorID: r.TranslatorID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		WillExpireAt: r.WillExpireAt,
		CompletedBy:  r.CompletedBy.String,
	}
	if r.CancelAt.Valid {
		t := r.CancelAt.Time
		a.CancelAt = &t
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time
		a.CompletedAt = &t
	}
	return a
}

func assignmentRowFromDomain(a *booking.Assignment) *assignmentRow {
	row := &assignmentRow{
		AssignmentID: a.ID,
		JobID:        a.JobID,
		TranslatorID: a.TranslatorID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		WillExpireAt: a.WillExpireAt,
	}
	if a.CancelAt != nil {
		row.CancelAt = sql.NullTime{Time: *a.CancelAt, Valid: true}
	}
	if a.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *a.CompletedAt, Valid: true}
	}
	if a.CompletedBy != "" {
		row.CompletedBy = sql.NullString{String: a.CompletedBy, Valid: true}
	}
	return row
}

// CreateAssignment inserts a translator-job relation. Rows are append-only;
// they are mutated on completion or cancellation but never deleted.
func (s *Storage) CreateAssignment(ctx context.Context, a *booking.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (
			:assignment_id, :job_id, :translator_id, :created_at, :updated_at,
			:will_expire_at, :cancel_at, :completed_at, :completed_by
		)
	`

	if _, err := sqlx.NamedExecContext(ctx, s.ext, query, assignmentRowFromDomain(a)); err != nil {
		return booking.NewStorageError(fmt.Errorf("insert assignment: %w", err))
	}
	return nil
}

// ActiveAssignment returns the job's single uncancelled, uncompleted
// assignment.
func (s *Storage) ActiveAssignment(ctx context.Context, jobID string) (*booking.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE job_id = $1 AND cancel_at IS NULL AND completed_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	var row assignmentRow
	if err := sqlx.GetContext(ctx, s.ext, &row, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrAssignmentNotFound
		}
		return nil, booking.NewStorageError(fmt.Errorf("get active assignment: %w", err))
	}
	return row.toDomain(), nil
}

// UpdateAssignment rewrites the mutable columns of an assignment row.
func (s *Storage) UpdateAssignment(ctx context.Context, a *booking.Assignment) error {
	query := `
		UPDATE assignments SET
			updated_at = :updated_at,
			will_expire_at = :will_expire_at,
			cancel_at = :cancel_at,
			completed_at = :completed_at,
			completed_by = :completed_by
		WHERE assignment_id = :assignment_id
	`

	res, err := sqlx.NamedExecContext(ctx, s.ext, query, assignmentRowFromDomain(a))
	if err != nil {
		return booking.NewStorageError(fmt.Errorf("update assignment: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrAssignmentNotFound
	}
	return nil
}

// CancelAssignments cancels every currently-uncancelled assignment on the
// job in one statement.
func (s *Storage) CancelAssignments(ctx context.Context, jobID string, at time.Time) error {
	query := `
		UPDATE assignments
		SET cancel_at = $1, updated_at = $1
		WHERE job_id = $2 AND cancel_at IS NULL
	`

	if _, err := s.ext.ExecContext(ctx, query, at, jobID); err != nil {
		return booking.NewStorageError(fmt.Errorf("cancel assignments: %w", err))
	}
	return nil
}
