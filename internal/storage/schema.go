package storage

import (
	"context"
	"fmt"

	"github.com/tolkbridge/booking-be/internal/booking"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS customers (
	user_id TEXT PRIMARY KEY,
	user_type TEXT NOT NULL DEFAULT 'customer',
	consumer_type TEXT NOT NULL DEFAULT '',
	customer_type TEXT NOT NULL DEFAULT '',
	town TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS translators (
	user_id TEXT PRIMARY KEY,
	translator_type TEXT NOT NULL DEFAULT 'volunteer',
	gender TEXT NOT NULL DEFAULT '',
	translator_level TEXT NOT NULL DEFAULT '',
	town TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	not_get_notification BOOLEAN NOT NULL DEFAULT FALSE,
	not_get_emergency BOOLEAN NOT NULL DEFAULT FALSE,
	delay_push BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS translator_languages (
	user_id TEXT NOT NULL REFERENCES translators(user_id),
	language_id TEXT NOT NULL,
	PRIMARY KEY (user_id, language_id)
);

CREATE TABLE IF NOT EXISTS languages (
	language_id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
	job_id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers(user_id),
	from_language_id TEXT NOT NULL,
	immediate TEXT NOT NULL DEFAULT 'no',
	due TIMESTAMPTZ NOT NULL,
	duration INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	gender TEXT NOT NULL DEFAULT '',
	certification TEXT NOT NULL DEFAULT '',
	job_type TEXT NOT NULL DEFAULT 'unpaid',
	customer_phone_type TEXT NOT NULL DEFAULT 'no',
	customer_physical_type TEXT NOT NULL DEFAULT 'no',
	specific_translator_id TEXT,
	will_expire_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	end_at TIMESTAMPTZ,
	session_time INTEGER NOT NULL DEFAULT 0,
	ignore_expiring BOOLEAN NOT NULL DEFAULT FALSE,
	ignore_expired BOOLEAN NOT NULL DEFAULT FALSE,
	ignore_feedback BOOLEAN NOT NULL DEFAULT FALSE,
	flagged BOOLEAN NOT NULL DEFAULT FALSE,
	reminder_16h_sent BOOLEAN NOT NULL DEFAULT FALSE,
	reminder_48h_sent BOOLEAN NOT NULL DEFAULT FALSE,
	admin_comments TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assignments (
	assignment_id TEXT PRIMARY KEY,
	job_id TEXT NOT NULL REFERENCES jobs(job_id),
	translator_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	will_expire_at TIMESTAMPTZ NOT NULL,
	cancel_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	completed_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_will_expire_at ON jobs(will_expire_at);
CREATE INDEX IF NOT EXISTS idx_assignments_job ON assignments(job_id);
CREATE INDEX IF NOT EXISTS idx_assignments_translator ON assignments(translator_id);
`

// Migrate creates the schema when it does not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.ext.ExecContext(ctx, schemaSQL); err != nil {
		return booking.NewStorageError(fmt.Errorf("apply schema: %w", err))
	}
	return nil
}
