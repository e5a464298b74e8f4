package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tolkbridge/booking-be/internal/booking"
)

// Predicate contributes one conjunctive condition to a job listing query.
// Predicates are folded left-to-right into the builder, so a caller can
// assemble a filter set from optional request parameters.
type Predicate func(*queryBuilder)

type queryBuilder struct {
	conds   []string
	args    []any
	orderBy string
}

// where appends a condition written with ? placeholders.
func (b *queryBuilder) where(cond string, args ...any) {
	b.conds = append(b.conds, cond)
	b.args = append(b.args, args...)
}

func (b *queryBuilder) build(base string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)
	for i, cond := range b.conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(cond)
	}
	orderBy := b.orderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	sb.WriteString(" ORDER BY " + orderBy)
	return sb.String(), b.args
}

// Preview renders a predicate set into the condition string and arguments
// it would contribute to a listing query.
func Preview(preds ...Predicate) (string, []any) {
	b := &queryBuilder{}
	for _, pred := range preds {
		pred(b)
	}
	return strings.Join(b.conds, " AND "), b.args
}

// WithIDs restricts the listing to specific job ids.
func WithIDs(ids ...string) Predicate {
	return func(b *queryBuilder) {
		if len(ids) > 0 {
			b.where("job_id = ANY(?)", pq.Array(ids))
		}
	}
}

// WithStatuses restricts the listing to the given statuses.
func WithStatuses(statuses ...booking.JobStatus) Predicate {
	return func(b *queryBuilder) {
		if len(statuses) > 0 {
			vals := make([]string, len(statuses))
			for i, st := range statuses {
				vals[i] = string(st)
			}
			b.where("status = ANY(?)", pq.Array(vals))
		}
	}
}

// WithLanguages restricts the listing to jobs in the given languages.
func WithLanguages(languageIDs ...string) Predicate {
	return func(b *queryBuilder) {
		if len(languageIDs) > 0 {
			b.where("from_language_id = ANY(?)", pq.Array(languageIDs))
		}
	}
}

// WithJobTypes restricts the listing to the given job types.
func WithJobTypes(types ...booking.JobType) Predicate {
	return func(b *queryBuilder) {
		if len(types) > 0 {
			vals := make([]string, len(types))
			for i, t := range types {
				vals[i] = string(t)
			}
			b.where("job_type = ANY(?)", pq.Array(vals))
		}
	}
}

// WithCustomer restricts the listing to one customer's bookings.
func WithCustomer(customerID string) Predicate {
	return func(b *queryBuilder) {
		if customerID != "" {
			b.where("customer_id = ?", customerID)
		}
	}
}

// WithFlagged keeps only flagged bookings.
func WithFlagged() Predicate {
	return func(b *queryBuilder) {
		b.where("flagged")
	}
}

// WithPhysical filters on the physical-presence flag ("yes"/"no").
func WithPhysical(v string) Predicate {
	return func(b *queryBuilder) {
		if v != "" {
			b.where("customer_physical_type = ?", v)
		}
	}
}

// WithPhone filters on the phone flag ("yes"/"no").
func WithPhone(v string) Predicate {
	return func(b *queryBuilder) {
		if v != "" {
			b.where("customer_phone_type = ?", v)
		}
	}
}

// WithWillExpireAfter keeps bookings whose deadline is at or after t.
func WithWillExpireAfter(t time.Time) Predicate {
	return func(b *queryBuilder) {
		b.where("will_expire_at >= ?", t)
	}
}

// WithExpiredPending keeps pending bookings whose deadline has passed and
// that an admin has not chosen to ignore.
func WithExpiredPending(now time.Time) Predicate {
	return func(b *queryBuilder) {
		b.where("status = ?", string(booking.StatusPending))
		b.where("will_expire_at <= ?", now)
		b.where("NOT ignore_expired")
	}
}

// WithCreatedBetween bounds the creation time. Zero bounds are open, and a
// populated range orders the listing by creation time.
func WithCreatedBetween(from, to time.Time) Predicate {
	return timeWindow("created_at", from, to)
}

// WithDueBetween bounds the due time. Zero bounds are open, and a populated
// range orders the listing by due time.
func WithDueBetween(from, to time.Time) Predicate {
	return timeWindow("due", from, to)
}

func timeWindow(column string, from, to time.Time) Predicate {
	return func(b *queryBuilder) {
		if !from.IsZero() {
			b.where(column+" >= ?", from)
		}
		if !to.IsZero() {
			b.where(column+" <= ?", to)
		}
		if !from.IsZero() || !to.IsZero() {
			b.orderBy = column + " DESC"
		}
	}
}

// ListJobs runs the admin listing with the given predicates. Used by the
// admin surfaces only; the dispatch core never goes through here.
func (s *Storage) ListJobs(ctx context.Context, preds ...Predicate) ([]*booking.Job, error) {
	b := &queryBuilder{}
	for _, pred := range preds {
		pred(b)
	}

	query, args := b.build(`SELECT ` + jobColumns + ` FROM jobs`)
	query = s.ext.Rebind(query)

	var rows []jobRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, booking.NewStorageError(fmt.Errorf("list jobs: %w", err))
	}

	jobs := make([]*booking.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].toDomain()
	}
	return jobs, nil
}
