package booking

import (
	"context"
	"time"
)

// PotentialJobsQuery narrows the pending-job pool to bookings a translator
// is structurally allowed to see.
type PotentialJobsQuery struct {
	TranslatorID    string
	JobType         JobType
	Status          JobStatus
	Languages       []string
	Gender          Gender
	TranslatorLevel string
}

// JobStore is the booking side of the storage collaborator.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) error
	JobByID(ctx context.Context, jobID string) (*Job, error)
	UpdateJob(ctx context.Context, job *Job) error

	// LanguageName resolves a language id to its display name.
	LanguageName(ctx context.Context, languageID string) (string, error)

	CustomerByID(ctx context.Context, customerID string) (*Customer, error)
}

// AssignmentStore is the translator-assignment side of the storage
// collaborator. Assignment rows are never deleted.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a *Assignment) error

	// ActiveAssignment returns the one assignment on jobID with neither
	// cancel_at nor completed_at set, or ErrAssignmentNotFound.
	ActiveAssignment(ctx context.Context, jobID string) (*Assignment, error)

	UpdateAssignment(ctx context.Context, a *Assignment) error

	// CancelAssignments sets cancel_at on every currently-uncancelled
	// assignment of the job.
	CancelAssignments(ctx context.Context, jobID string, at time.Time) error
}

// TranslatorStore exposes the translator-profile reads the dispatch engine
// needs.
type TranslatorStore interface {
	TranslatorProfile(ctx context.Context, userID string) (*TranslatorProfile, error)

	// ListActiveTranslatorIDs enumerates all active translator users in a
	// stable order, leaving out excludeUserID when it is non-empty.
	ListActiveTranslatorIDs(ctx context.Context, excludeUserID string) ([]string, error)

	// PotentialJobIDs lists the ids of jobs matching the query.
	PotentialJobIDs(ctx context.Context, q PotentialJobsQuery) ([]string, error)

	// TownsMatch reports whether the customer and the translator are in
	// matching towns for physical bookings.
	TownsMatch(ctx context.Context, customerID, translatorID string) (bool, error)
}

// Store is the full storage collaborator contract. InTx runs fn against a
// store bound to a single transaction, so a lifecycle transition's reads and
// writes on one job cannot interleave with a concurrent transition.
type Store interface {
	JobStore
	AssignmentStore
	TranslatorStore

	InTx(ctx context.Context, fn func(Store) error) error
}
