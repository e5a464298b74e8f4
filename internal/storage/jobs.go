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

const jobColumns = `
	job_id, customer_id, from_language_id, immediate, due, duration,
	status, gender, certification, job_type,
	customer_phone_type, customer_physical_type,
	will_expire_at, created_at, updated_at, end_at, session_time,
	ignore_expiring, ignore_expired, ignore_feedback, flagged,
	reminder_16h_sent, reminder_48h_sent, admin_comments`

// jobRow maps the jobs table to the domain type.
type jobRow struct {
	JobID                string       `db:"job_id"`
	CustomerID           string       `db:"customer_id"`
	FromLanguageID       string       `db:"from_language_id"`
	Immediate            string       `db:"immediate"`
	Due                  time.Time    `db:"due"`
	Duration             int          `db:"duration"`
	Status               string       `db:"status"`
	Gender               string       `db:"gender"`
	Certification        string       `db:"certification"`
	JobType              string       `db:"job_type"`
	CustomerPhoneType    string       `db:"customer_phone_type"`
	CustomerPhysicalType string       `db:"customer_physical_type"`
	WillExpireAt         time.Time    `db:"will_expire_at"`
	CreatedAt            time.Time    `db:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"`
	EndAt                sql.NullTime `db:"end_at"`
	SessionTime          int          `db:"session_time"`
	IgnoreExpiring       bool         `db:"ignore_expiring"`
	IgnoreExpired        bool         `db:"ignore_expired"`
	IgnoreFeedback       bool         `db:"ignore_feedback"`
	Flagged              bool         `db:"flagged"`
	Reminder16HourSent   bool         `db:"reminder_16h_sent"`
	Reminder48HourSent   bool         `db:"reminder_48h_sent"`
	AdminComments        string       `db:"admin_comments"`
}

func (r *jobRow) toDomain() *booking.Job {
	job := &booking.Job{
		ID:                   r.JobID,
		CustomerID:           r.CustomerID,
		FromLanguageID:       r.FromLanguageID,
		Immediate:            r.Immediate,
		Due:                  r.Due,
		Duration:             r.Duration,
		Status:               booking.JobStatus(r.Status),
		Gender:               booking.Gender(r.Gender),
		Certification:        booking.Certification(r.Certification),
		JobType:              booking.JobType(r.JobType),
		CustomerPhoneType:    r.CustomerPhoneType,
		CustomerPhysicalType: r.CustomerPhysicalType,
		WillExpireAt:         r.WillExpireAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		SessionTime:          r.SessionTime,
		IgnoreExpiring:       r.IgnoreExpiring,
		IgnoreExpired:        r.IgnoreExpired,
		IgnoreFeedback:       r.IgnoreFeedback,
		Flagged:              r.Flagged,
		Reminder16HourSent:   r.Reminder16HourSent,
		Reminder48HourSent:   r.Reminder48HourSent,
		AdminComments:        r.AdminComments,
	}
	if r.EndAt.Valid {
		endAt := r.EndAt.Time
		job.EndAt = &endAt
	}
	return job
}

func jobRowFromDomain(job *booking.Job) *jobRow {
	row := &jobRow{
		JobID:                job.ID,
		CustomerID:           job.CustomerID,
		FromLanguageID:       job.FromLanguageID,
		Immediate:            job.Immediate,
		Due:                  job.Due,
		Duration:             job.Duration,
		Status:               string(job.Status),
		Gender:               string(job.Gender),
		Certification:        string(job.Certification),
		JobType:              string(job.JobType),
		CustomerPhoneType:    job.CustomerPhoneType,
		CustomerPhysicalType: job.CustomerPhysicalType,
		WillExpireAt:         job.WillExpireAt,
		CreatedAt:            job.CreatedAt,
		UpdatedAt:            job.UpdatedAt,
		SessionTime:          job.SessionTime,
		IgnoreExpiring:       job.IgnoreExpiring,
		IgnoreExpired:        job.IgnoreExpired,
		IgnoreFeedback:       job.IgnoreFeedback,
		Flagged:              job.Flagged,
		Reminder16HourSent:   job.Reminder16HourSent,
		Reminder48HourSent:   job.Reminder48HourSent,
		AdminComments:        job.AdminComments,
	}
	if job.EndAt != nil {
		row.EndAt = sql.NullTime{Time: *job.EndAt, Valid: true}
	}
	return row
}

// CreateJob inserts a new booking row.
func (s *Storage) CreateJob(ctx context.Context, job *booking.Job) error {
	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (
			:job_id, :customer_id, :from_language_id, :immediate, :due, :duration,
			:status, :gender, :certification, :job_type,
			:customer_phone_type, :customer_physical_type,
			:will_expire_at, :created_at, :updated_at, :end_at, :session_time,
			:ignore_expiring, :ignore_expired, :ignore_feedback, :flagged,
			:reminder_16h_sent, :reminder_48h_sent, :admin_comments
		)
	`

	if _, err := sqlx.NamedExecContext(ctx, s.ext, query, jobRowFromDomain(job)); err != nil {
		return booking.NewStorageError(fmt.Errorf("insert job: %w", err))
	}
	return nil
}

// JobByID fetches one booking.
func (s *Storage) JobByID(ctx context.Context, jobID string) (*booking.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	var row jobRow
	if err := sqlx.GetContext(ctx, s.ext, &row, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrJobNotFound
		}
		return nil, booking.NewStorageError(fmt.Errorf("get job: %w", err))
	}
	return row.toDomain(), nil
}

// UpdateJob rewrites every mutable column of a booking row.
func (s *Storage) UpdateJob(ctx context.Context, job *booking.Job) error {
	query := `
		UPDATE jobs SET
			immediate = :immediate,
			due = :due,
			duration = :duration,
			status = :status,
			gender = :gender,
			certification = :certification,
			job_type = :job_type,
			customer_phone_type = :customer_phone_type,
			customer_physical_type = :customer_physical_type,
			will_expire_at = :will_expire_at,
			created_at = :created_at,
			updated_at = :updated_at,
			end_at = :end_at,
			session_time = :session_time,
			ignore_expiring = :ignore_expiring,
			ignore_expired = :ignore_expired,
			ignore_feedback = :ignore_feedback,
			flagged = :flagged,
			reminder_16h_sent = :reminder_16h_sent,
			reminder_48h_sent = :reminder_48h_sent,
			admin_comments = :admin_comments
		WHERE job_id = :job_id
	`

	res, err := sqlx.NamedExecContext(ctx, s.ext, query, jobRowFromDomain(job))
	if err != nil {
		return booking.NewStorageError(fmt.Errorf("update job: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrJobNotFound
	}
	return nil
}

// LanguageName resolves a language id to its display name.
func (s *Storage) LanguageName(ctx context.Context, languageID string) (string, error) {
	var name string
	err := sqlx.GetContext(ctx, s.ext, &name,
		`SELECT name FROM languages WHERE language_id = $1`, languageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("language %s not found", languageID)
		}
		return "", booking.NewStorageError(fmt.Errorf("get language: %w", err))
	}
	return name, nil
}

// CustomerByID fetches the read-only customer view used in notification
// payloads.
func (s *Storage) CustomerByID(ctx context.Context, customerID string) (*booking.Customer, error) {
	var row struct {
		UserID       string `db:"user_id"`
		UserType     string `db:"user_type"`
		ConsumerType string `db:"consumer_type"`
		CustomerType string `db:"customer_type"`
		Town         string `db:"town"`
	}

	query := `
		SELECT user_id, user_type, consumer_type, customer_type, town
		FROM customers
		WHERE user_id = $1
	`
	if err := sqlx.GetContext(ctx, s.ext, &row, query, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrCustomerNotFound
		}
		return nil, booking.NewStorageError(fmt.Errorf("get customer: %w", err))
	}

	return &booking.Customer{
		ID:           row.UserID,
		UserType:     row.UserType,
		ConsumerType: row.ConsumerType,
		CustomerType: row.CustomerType,
		Town:         row.Town,
	}, nil
}

// SetIgnoreExpired flips the ignore_expired administrative flag.
func (s *Storage) SetIgnoreExpired(ctx context.Context, jobID string) error {
	return s.setFlag(ctx, jobID, "ignore_expired")
}

// SetIgnoreExpiring flips the ignore_expiring administrative flag.
func (s *Storage) SetIgnoreExpiring(ctx context.Context, jobID string) error {
	return s.setFlag(ctx, jobID, "ignore_expiring")
}

func (s *Storage) setFlag(ctx context.Context, jobID, column string) error {
	query := fmt.Sprintf(`UPDATE jobs SET %s = TRUE, updated_at = NOW() WHERE job_id = $1`, column)
	res, err := s.ext.ExecContext(ctx, query, jobID)
	if err != nil {
		return booking.NewStorageError(fmt.Errorf("set %s: %w", column, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return booking.ErrJobNotFound
	}
	return nil
}
