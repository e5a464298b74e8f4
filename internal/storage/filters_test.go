package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tolkbridge/booking-be/internal/booking"
)

func buildWith(preds ...Predicate) (string, []any) {
	b := &queryBuilder{}
	for _, pred := range preds {
		pred(b)
	}
	return b.build("SELECT job_id FROM jobs")
}

func TestQueryBuilder_NoPredicates(t *testing.T) {
	query, args := buildWith()
	assert.Equal(t, "SELECT job_id FROM jobs ORDER BY created_at DESC", query)
	assert.Empty(t, args)
}

func TestQueryBuilder_FoldsLeftToRight(t *testing.T) {
	query, args := buildWith(
		WithCustomer("cust-1"),
		WithStatuses(booking.StatusPending, booking.StatusAssigned),
		WithPhysical("yes"),
	)

	assert.Equal(t,
		"SELECT job_id FROM jobs WHERE customer_id = ? AND status = ANY(?) AND customer_physical_type = ? ORDER BY created_at DESC",
		query)
	assert.Len(t, args, 3)
	assert.Equal(t, "cust-1", args[0])
	assert.Equal(t, "yes", args[2])
}

func TestQueryBuilder_EmptyValuesContributeNothing(t *testing.T) {
	query, args := buildWith(
		WithCustomer(""),
		WithStatuses(),
		WithLanguages(),
		WithPhone(""),
	)

	assert.Equal(t, "SELECT job_id FROM jobs ORDER BY created_at DESC", query)
	assert.Empty(t, args)
}

func TestQueryBuilder_ExpiredPending(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	query, args := buildWith(WithExpiredPending(now))

	assert.Equal(t,
		"SELECT job_id FROM jobs WHERE status = ? AND will_expire_at <= ? AND NOT ignore_expired ORDER BY created_at DESC",
		query)
	assert.Equal(t, []any{"pending", now}, args)
}

func TestQueryBuilder_TimeWindowOverridesOrder(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildWith(WithDueBetween(from, to))
	assert.Equal(t,
		"SELECT job_id FROM jobs WHERE due >= ? AND due <= ? ORDER BY due DESC",
		query)
	assert.Equal(t, []any{from, to}, args)

	// An open upper bound still filters and reorders.
	query, args = buildWith(WithCreatedBetween(from, time.Time{}))
	assert.Equal(t,
		"SELECT job_id FROM jobs WHERE created_at >= ? ORDER BY created_at DESC",
		query)
	assert.Equal(t, []any{from}, args)
}
