package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// dueDateLayout is the date/time format customers submit for scheduled
// bookings.
const dueDateLayout = "01/02/2006 15:04"

// immediateLeadTime is how far ahead an urgent booking is due.
const immediateLeadTime = 5 * time.Minute

// CreateBookingInput is the raw booking form a customer submits. String
// fields stay strings so presence checks mirror the form semantics.
type CreateBookingInput struct {
	FromLanguageID       string
	Immediate            string // "yes" or "no"
	DueDate              string // "01/02/2006"
	DueTime              string // "15:04"
	Duration             string // minutes
	CustomerPhoneType    string
	CustomerPhysicalType string
	JobFor               []string
}

// Lifecycle owns the valid state transitions of a booking and its
// session-duration accounting.
type Lifecycle struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewLifecycle creates a Lifecycle service.
func NewLifecycle(store Store, publisher Publisher, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates a booking request, derives the stored fields, persists a
// new pending job and announces it for dispatch. Returns the new job id.
func (l *Lifecycle) Create(ctx context.Context, customer *Customer, in CreateBookingInput) (string, error) {
	if customer.UserType != UserTypeCustomer {
		return "", ErrNotCustomer
	}

	if field := validateCreateInput(in); field != "" {
		return "", &ValidationError{Field: field}
	}

	duration, err := strconv.Atoi(in.Duration)
	if err != nil || duration <= 0 {
		return "", &ValidationError{Field: "duration"}
	}

	now := l.now()

	due, err := l.resolveDue(in, now)
	if err != nil {
		return "", err
	}

	job := &Job{
		ID:                   uuid.New().String(),
		CustomerID:           customer.ID,
		FromLanguageID:       in.FromLanguageID,
		Immediate:            in.Immediate,
		Due:                  due,
		Duration:             duration,
		Status:               StatusPending,
		Gender:               DeriveGender(in.JobFor),
		Certification:        DeriveCertification(in.JobFor),
		JobType:              JobTypeForConsumer(customer.ConsumerType),
		CustomerPhoneType:    defaultNo(in.CustomerPhoneType),
		CustomerPhysicalType: defaultNo(in.CustomerPhysicalType),
		WillExpireAt:         WillExpireAt(due, now),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := l.store.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	l.logger.Info("Booking created",
		slog.String("job_id", job.ID),
		slog.String("customer_id", customer.ID),
		slog.String("immediate", job.Immediate),
		slog.Time("due", job.Due),
		slog.Time("will_expire_at", job.WillExpireAt),
	)

	// Dispatch is best-effort; the stored job is the transaction of record.
	if err := l.publisher.PublishJobCreated(ctx, job.ID); err != nil {
		l.logger.Error("Failed to publish job created event",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}

	return job.ID, nil
}

// validateCreateInput returns the name of the first missing field, or "".
func validateCreateInput(in CreateBookingInput) string {
	if in.FromLanguageID == "" {
		return "from_language_id"
	}
	if in.Immediate == "no" && (in.DueDate == "" || in.DueTime == "" || in.Duration == "") {
		return "due_date"
	}
	if in.Immediate == "yes" && in.Duration == "" {
		return "duration"
	}
	if in.CustomerPhoneType == "" && in.CustomerPhysicalType == "" {
		return "customer_phone_type"
	}
	return ""
}

func (l *Lifecycle) resolveDue(in CreateBookingInput, now time.Time) (time.Time, error) {
	if in.Immediate == "yes" {
		return now.Add(immediateLeadTime), nil
	}

	due, err := time.ParseInLocation(dueDateLayout, in.DueDate+" "+in.DueTime, now.Location())
	if err != nil {
		return time.Time{}, &ValidationError{Field: "due_date"}
	}
	if due.Before(now) {
		return time.Time{}, ErrPastDate
	}
	return due, nil
}

// JobTypeForConsumer maps a customer's consumer type to the job type their
// bookings carry.
func JobTypeForConsumer(consumerType string) JobType {
	if consumerType == "rwsconsumer" {
		return JobTypeRWS
	}
	return JobTypeUnpaid
}

func defaultNo(v string) string {
	if v == "" {
		return "no"
	}
	return v
}

// End completes a booking session. session_time is the signed minute
// difference between the due time and the completion instant; finishing
// early yields a negative value, kept as-is.
func (l *Lifecycle) End(ctx context.Context, jobID string, completedAt time.Time, actingUserID string) error {
	var ev *SessionEndedEvent

	err := l.store.InTx(ctx, func(tx Store) error {
		job, err := tx.JobByID(ctx, jobID)
		if err != nil {
			return err
		}

		job.SessionTime = int(completedAt.Sub(job.Due).Minutes())
		job.EndAt = &completedAt
		job.Status = StatusCompleted
		job.UpdatedAt = completedAt

		if err := tx.UpdateJob(ctx, job); err != nil {
			return fmt.Errorf("update job: %w", err)
		}

		if job.SessionTime > 0 {
			responsible := actingUserID
			if responsible != job.CustomerID {
				assignment, err := tx.ActiveAssignment(ctx, jobID)
				if err != nil {
					l.logger.Warn("No active assignment for session-ended event",
						slog.String("job_id", jobID),
						slog.String("error", err.Error()),
					)
					return nil
				}
				responsible = assignment.TranslatorID
			}
			ev = &SessionEndedEvent{
				JobID:             jobID,
				ResponsibleUserID: responsible,
				SessionTime:       job.SessionTime,
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("Booking completed",
		slog.String("job_id", jobID),
		slog.String("acting_user_id", actingUserID),
	)

	if ev != nil {
		if err := l.publisher.PublishSessionEnded(ctx, *ev); err != nil {
			l.logger.Error("Failed to publish session ended event",
				slog.String("job_id", jobID),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// MarkNotCarriedOut records that the customer never showed up: the job ends
// in not_carried_out_by_customer and the active assignment is closed in the
// translator's name. Every failure is logged with its cause but reported to
// the caller as the uniform ErrProcessing.
func (l *Lifecycle) MarkNotCarriedOut(ctx context.Context, jobID string, completedAt time.Time) error {
	err := l.store.InTx(ctx, func(tx Store) error {
		job, err := tx.JobByID(ctx, jobID)
		if err != nil {
			return err
		}

		assignment, err := tx.ActiveAssignment(ctx, jobID)
		if err != nil {
			return err
		}

		job.EndAt = &completedAt
		job.Status = StatusNotCarriedOut
		job.UpdatedAt = completedAt
		if err := tx.UpdateJob(ctx, job); err != nil {
			return fmt.Errorf("update job: %w", err)
		}

		assignment.CompletedAt = &completedAt
		assignment.CompletedBy = assignment.TranslatorID
		assignment.UpdatedAt = completedAt
		if err := tx.UpdateAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("update assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		l.logger.Error("Failed to mark booking as not carried out",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		return ErrProcessing
	}

	l.logger.Info("Booking marked as not carried out by customer",
		slog.String("job_id", jobID),
	)
	return nil
}

// Reopen re-offers a booking. A job that has not timed out is reset in
// place; a timed-out job is replicated into a fresh row with a new identity,
// reset reminder flags and an admin note referencing the original. In both
// cases every uncancelled assignment on the original job is cancelled, and a
// new, already-cancelled assignment row records the acting translator.
// Returns the id of the job now pending.
func (l *Lifecycle) Reopen(ctx context.Context, jobID, actingTranslatorID string) (string, error) {
	now := l.now()
	var newJobID string

	err := l.store.InTx(ctx, func(tx Store) error {
		job, err := tx.JobByID(ctx, jobID)
		if err != nil {
			return err
		}

		willExpireAt := WillExpireAt(job.Due, now)

		if job.Status != StatusTimedOut {
			job.Status = StatusPending
			job.CreatedAt = now
			job.UpdatedAt = now
			job.WillExpireAt = willExpireAt
			if err := tx.UpdateJob(ctx, job); err != nil {
				return fmt.Errorf("update job: %w", err)
			}
			newJobID = jobID
		} else {
			replica := *job
			replica.ID = uuid.New().String()
			replica.Status = StatusPending
			replica.CreatedAt = now
			replica.UpdatedAt = now
			replica.WillExpireAt = willExpireAt
			replica.Reminder16HourSent = false
			replica.Reminder48HourSent = false
			replica.AdminComments = fmt.Sprintf("This booking is a reopening of booking #%s", jobID)
			if err := tx.CreateJob(ctx, &replica); err != nil {
				return fmt.Errorf("replicate job: %w", err)
			}
			newJobID = replica.ID
		}

		if err := tx.CancelAssignments(ctx, jobID, now); err != nil {
			return fmt.Errorf("cancel assignments: %w", err)
		}

		// The fresh assignment is recorded already cancelled: it marks the
		// translator who triggered the reopen, not a live acceptance.
		assignment := &Assignment{
			ID:           uuid.New().String(),
			JobID:        newJobID,
			TranslatorID: actingTranslatorID,
			CreatedAt:    now,
			UpdatedAt:    now,
			WillExpireAt: willExpireAt,
			CancelAt:     &now,
		}
		if err := tx.CreateAssignment(ctx, assignment); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	l.logger.Info("Booking reopened",
		slog.String("job_id", jobID),
		slog.String("new_job_id", newJobID),
		slog.String("translator_id", actingTranslatorID),
	)

	if err := l.publisher.PublishJobReopened(ctx, newJobID); err != nil {
		l.logger.Error("Failed to publish job reopened event",
			slog.String("job_id", newJobID),
			slog.String("error", err.Error()),
		)
	}

	return newJobID, nil
}
