package booking

import (
	"context"
	"fmt"
	"log/slog"
)

// AssignmentPolicy holds the two assignment-history business checks the
// storage collaborator exposes. Both answer a plain yes/no:
//
//   - AssignedToParticular reports whether the job is open to this
//     translator at all (it is either untargeted, or targeted at them).
//   - CanAcceptParticular reports whether the translator's current
//     assignment history permits accepting this specific job.
type AssignmentPolicy interface {
	AssignedToParticular(ctx context.Context, translatorID, jobID string) (bool, error)
	CanAcceptParticular(ctx context.Context, translatorID, jobID string) (bool, error)
}

// Eligibility decides whether a translator may be offered a job. All
// predicates must pass.
type Eligibility struct {
	store  Store
	policy AssignmentPolicy
	logger *slog.Logger
}

// NewEligibility creates an Eligibility checker.
func NewEligibility(store Store, policy AssignmentPolicy, logger *slog.Logger) *Eligibility {
	return &Eligibility{
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// IsEligible reports whether the translator may be offered the job.
func (e *Eligibility) IsEligible(ctx context.Context, profile *TranslatorProfile, job *Job) (bool, error) {
	// Opt-outs come first; nothing else matters for a muted translator.
	if profile.NotGetNotification {
		return false, nil
	}
	if job.IsImmediate() && profile.NotGetEmergency {
		return false, nil
	}

	// Narrow the pending pool to jobs this translator is structurally
	// allowed to see, then confirm this job is in it.
	inPool, err := e.inPotentialPool(ctx, profile, job)
	if err != nil {
		return false, err
	}
	if !inPool {
		return false, nil
	}

	// Physical bookings outside the translator's town are out, unless the
	// customer also accepts a phone session.
	if job.PhysicalRequired() && !job.PhoneAllowed() {
		match, err := e.store.TownsMatch(ctx, job.CustomerID, profile.UserID)
		if err != nil {
			return false, fmt.Errorf("check towns: %w", err)
		}
		if !match {
			return false, nil
		}
	}

	assigned, err := e.policy.AssignedToParticular(ctx, profile.UserID, job.ID)
	if err != nil {
		return false, fmt.Errorf("check particular assignment: %w", err)
	}
	if !assigned {
		return false, nil
	}

	canAccept, err := e.policy.CanAcceptParticular(ctx, profile.UserID, job.ID)
	if err != nil {
		return false, fmt.Errorf("check acceptance: %w", err)
	}
	return canAccept, nil
}

func (e *Eligibility) inPotentialPool(ctx context.Context, profile *TranslatorProfile, job *Job) (bool, error) {
	jobIDs, err := e.store.PotentialJobIDs(ctx, PotentialJobsQuery{
		TranslatorID:    profile.UserID,
		JobType:         JobTypeFor(profile.TranslatorType),
		Status:          StatusPending,
		Languages:       profile.Languages,
		Gender:          profile.Gender,
		TranslatorLevel: profile.TranslatorLevel,
	})
	if err != nil {
		return false, fmt.Errorf("list potential jobs: %w", err)
	}

	for _, id := range jobIDs {
		if id == job.ID {
			return true, nil
		}
	}
	return false, nil
}
