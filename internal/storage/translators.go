package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tolkbridge/booking-be/internal/booking"
)

// TranslatorProfile loads a translator's dispatch-relevant profile,
// including their spoken languages.
func (s *Storage) TranslatorProfile(ctx context.Context, userID string) (*booking.TranslatorProfile, error) {
	var row struct {
		UserID             string `db:"user_id"`
		TranslatorType     string `db:"translator_type"`
		Gender             string `db:"gender"`
		TranslatorLevel    string `db:"translator_level"`
		Town               string `db:"town"`
		NotGetNotification bool   `db:"not_get_notification"`
		NotGetEmergency    bool   `db:"not_get_emergency"`
		DelayPush          bool   `db:"delay_push"`
	}

	query := `
		SELECT user_id, translator_type, gender, translator_level, town,
		       not_get_notification, not_get_emergency, delay_push
		FROM translators
		WHERE user_id = $1
	`
	if err := sqlx.GetContext(ctx, s.ext, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrTranslatorNotFound
		}
		return nil, booking.NewStorageError(fmt.Errorf("get translator: %w", err))
	}

	var languages []string
	err := sqlx.SelectContext(ctx, s.ext, &languages,
		`SELECT language_id FROM translator_languages WHERE user_id = $1 ORDER BY language_id`, userID)
	if err != nil {
		return nil, booking.NewStorageError(fmt.Errorf("get translator languages: %w", err))
	}

	return &booking.TranslatorProfile{
		UserID:             row.UserID,
		TranslatorType:     booking.TranslatorType(row.TranslatorType),
		Languages:          languages,
		Gender:             booking.Gender(row.Gender),
		TranslatorLevel:    row.TranslatorLevel,
		Town:               row.Town,
		NotGetNotification: row.NotGetNotification,
		NotGetEmergency:    row.NotGetEmergency,
		DelayPush:          row.DelayPush,
	}, nil
}

// ListActiveTranslatorIDs enumerates active translators, ordered by user id
// so dispatch batches are deterministic.
func (s *Storage) ListActiveTranslatorIDs(ctx context.Context, excludeUserID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM translators
		WHERE active AND user_id <> $1
		ORDER BY user_id
	`

	var ids []string
	if err := sqlx.SelectContext(ctx, s.ext, &ids, query, excludeUserID); err != nil {
		return nil, booking.NewStorageError(fmt.Errorf("list translators: %w", err))
	}
	return ids, nil
}

// PotentialJobIDs narrows the job pool to bookings the translator is
// structurally allowed to see: pending, matching their job type and spoken
// languages, with no conflicting gender or certification requirement.
func (s *Storage) PotentialJobIDs(ctx context.Context, q booking.PotentialJobsQuery) ([]string, error) {
	query := `
		SELECT job_id
		FROM jobs
		WHERE status = $1
		  AND job_type = $2
		  AND from_language_id = ANY($3)
		  AND (gender = '' OR gender = $4)
		  AND (certification = '' OR certification = $5 OR certification = 'both')
		ORDER BY due
	`

	var ids []string
	err := sqlx.SelectContext(ctx, s.ext, &ids, query,
		string(q.Status),
		string(q.JobType),
		pq.Array(q.Languages),
		string(q.Gender),
		q.TranslatorLevel,
	)
	if err != nil {
		return nil, booking.NewStorageError(fmt.Errorf("list potential jobs: %w", err))
	}
	return ids, nil
}

// TownsMatch reports whether the customer and the translator share a town
// for physical bookings.
func (s *Storage) TownsMatch(ctx context.Context, customerID, translatorID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM customers c
			JOIN translators t ON t.town = c.town
			WHERE c.user_id = $1 AND t.user_id = $2
		)
	`

	var match bool
	if err := sqlx.GetContext(ctx, s.ext, &match, query, customerID, translatorID); err != nil {
		return false, booking.NewStorageError(fmt.Errorf("check towns: %w", err))
	}
	return match, nil
}
