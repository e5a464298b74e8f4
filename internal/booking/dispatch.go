package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const suitableJobNotification = "suitable_job"

// EngineConfig tunes the dispatch fan-out.
type EngineConfig struct {
	// Concurrency bounds how many translators are checked in parallel.
	// Values below 1 fall back to sequential checking.
	Concurrency int

	// SkipEmptyBatches suppresses the provider call for an empty batch.
	// The two batches are never merged either way.
	SkipEmptyBatches bool
}

// Engine selects eligible translators for a job and hands the survivors to
// the notification collaborator in two batches: immediate and delayed.
type Engine struct {
	store       Store
	eligibility *Eligibility
	notifier    Notifier
	logger      *slog.Logger
	concurrency int
	skipEmpty   bool
}

// NewEngine creates a dispatch engine.
func NewEngine(store Store, eligibility *Eligibility, notifier Notifier, logger *slog.Logger, cfg EngineConfig) *Engine {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		store:       store,
		eligibility: eligibility,
		notifier:    notifier,
		logger:      logger,
		concurrency: concurrency,
		skipEmpty:   cfg.SkipEmptyBatches,
	}
}

// DispatchForJob loads the job and runs a fan-out. excludeUserID may be
// empty when nobody is to be left out.
func (e *Engine) DispatchForJob(ctx context.Context, jobID, excludeUserID string) error {
	job, err := e.store.JobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	_, _, err = e.Dispatch(ctx, job, excludeUserID)
	return err
}

// dispatchResult is one translator's verdict, kept at its enumeration index
// so batch order stays deterministic regardless of check scheduling.
type dispatchResult struct {
	userID   string
	eligible bool
	delay    bool
	err      error
}

// Dispatch partitions the eligible translators for job into an immediate and
// a delayed batch and invokes the notifier once per batch. excludeUserID is
// left out of the candidate set entirely. Returns both batches.
func (e *Engine) Dispatch(ctx context.Context, job *Job, excludeUserID string) (immediate, delayed []string, err error) {
	candidates, err := e.store.ListActiveTranslatorIDs(ctx, excludeUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("list translators: %w", err)
	}

	results := make([]dispatchResult, len(candidates))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.concurrency)
	for i, userID := range candidates {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.checkCandidate(ctx, userID, job)
		}(i, userID)
	}
	wg.Wait()

	// Stable fold in enumeration order.
	for _, res := range results {
		if res.err != nil {
			e.logger.Warn("Skipping translator after failed eligibility check",
				slog.String("job_id", job.ID),
				slog.String("translator_id", res.userID),
				slog.String("error", res.err.Error()),
			)
			continue
		}
		if !res.eligible {
			continue
		}
		if res.delay {
			delayed = append(delayed, res.userID)
		} else {
			immediate = append(immediate, res.userID)
		}
	}

	payload := e.buildPayload(ctx, job)
	message := composeMessage(job, payload.Language)

	e.logger.Info("Dispatching job to translators",
		slog.String("job_id", job.ID),
		slog.Int("immediate", len(immediate)),
		slog.Int("delayed", len(delayed)),
	)

	e.send(ctx, immediate, job.ID, payload, message, false)
	e.send(ctx, delayed, job.ID, payload, message, true)

	return immediate, delayed, nil
}

func (e *Engine) checkCandidate(ctx context.Context, userID string, job *Job) dispatchResult {
	profile, err := e.store.TranslatorProfile(ctx, userID)
	if err != nil {
		return dispatchResult{userID: userID, err: err}
	}

	eligible, err := e.eligibility.IsEligible(ctx, profile, job)
	if err != nil {
		return dispatchResult{userID: userID, err: err}
	}

	return dispatchResult{
		userID:   userID,
		eligible: eligible,
		delay:    profile.DelayPush,
	}
}

// send delivers one batch. Delivery failures are logged, never propagated:
// the lifecycle transition that triggered the dispatch is the transaction of
// record.
func (e *Engine) send(ctx context.Context, batch []string, jobID string, payload NotificationPayload, message string, delay bool) {
	if len(batch) == 0 && e.skipEmpty {
		return
	}

	if err := e.notifier.Send(ctx, batch, jobID, payload, message, delay); err != nil {
		e.logger.Error("Push notification delivery failed",
			slog.String("job_id", jobID),
			slog.Bool("delay", delay),
			slog.Int("recipients", len(batch)),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Engine) buildPayload(ctx context.Context, job *Job) NotificationPayload {
	language, err := e.store.LanguageName(ctx, job.FromLanguageID)
	if err != nil {
		e.logger.Warn("Failed to resolve language name",
			slog.String("job_id", job.ID),
			slog.String("language_id", job.FromLanguageID),
			slog.String("error", err.Error()),
		)
		language = job.FromLanguageID
	}

	payload := NotificationPayload{
		JobID:                job.ID,
		FromLanguageID:       job.FromLanguageID,
		Language:             language,
		Immediate:            job.Immediate,
		Duration:             job.Duration,
		DurationText:         FormatDuration(job.Duration),
		Status:               string(job.Status),
		Gender:               string(job.Gender),
		Certified:            string(job.Certification),
		Due:                  job.Due.Format("2006-01-02 15:04:05"),
		JobType:              string(job.JobType),
		CustomerPhoneType:    job.CustomerPhoneType,
		CustomerPhysicalType: job.CustomerPhysicalType,
		JobFor:               EncodeJobFor(job.Gender, job.Certification),
		NotificationType:     suitableJobNotification,
	}

	customer, err := e.store.CustomerByID(ctx, job.CustomerID)
	if err != nil {
		e.logger.Warn("Failed to load customer for notification payload",
			slog.String("job_id", job.ID),
			slog.String("customer_id", job.CustomerID),
			slog.String("error", err.Error()),
		)
		return payload
	}
	payload.CustomerTown = customer.Town
	payload.CustomerType = customer.CustomerType

	return payload
}

func composeMessage(job *Job, language string) string {
	if job.IsImmediate() {
		return fmt.Sprintf("New urgent booking for %s interpreter, %dmin", language, job.Duration)
	}
	return fmt.Sprintf("New booking for %s interpreter, %dmin, due %s",
		language, job.Duration, job.Due.Format("2006-01-02 15:04:05"))
}
