package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tolkbridge/booking-be/internal/booking"
	"github.com/tolkbridge/booking-be/internal/events"
)

// handleDelivery decodes one dispatch event, runs the fan-out and settles
// the delivery with the broker.
func (w *Worker) handleDelivery(ctx context.Context, delivery amqp.Delivery, workerName string) {
	var ev events.DispatchEvent
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		w.logger.Error("Failed to parse dispatch event",
			slog.String("worker_name", workerName),
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		// Malformed messages never become processable, drop them.
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			w.logger.Error("Failed to NACK malformed message",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	if ev.JobID == "" {
		w.logger.Error("Dispatch event without job_id",
			slog.String("worker_name", workerName),
			slog.String("body", string(delivery.Body)),
		)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			w.logger.Error("Failed to NACK message without job_id",
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	w.logger.Info("Processing dispatch event",
		slog.String("worker_name", workerName),
		slog.String("job_id", ev.JobID),
		slog.String("reason", ev.Reason),
	)

	err := w.processDispatch(ctx, ev)
	if err != nil {
		requeue := shouldRequeue(err)
		w.logger.Error("Dispatch failed",
			slog.String("worker_name", workerName),
			slog.String("job_id", ev.JobID),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)
		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			w.logger.Error("Failed to NACK message",
				slog.String("job_id", ev.JobID),
				slog.String("error", nackErr.Error()),
			)
		}
		return
	}

	if ackErr := delivery.Ack(false); ackErr != nil {
		w.logger.Error("Failed to ACK message",
			slog.String("job_id", ev.JobID),
			slog.String("error", ackErr.Error()),
		)
		return
	}

	w.logger.Info("Dispatch completed",
		slog.String("worker_name", workerName),
		slog.String("job_id", ev.JobID),
	)
}

// processDispatch runs one fan-out under the configured timeout.
func (w *Worker) processDispatch(ctx context.Context, ev events.DispatchEvent) error {
	if w.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.dispatchTimeout)
		defer cancel()
	}

	return w.engine.DispatchForJob(ctx, ev.JobID, ev.ExcludeUserID)
}

// shouldRequeue decides whether a failed dispatch is worth retrying.
func shouldRequeue(err error) bool {
	// A booking that no longer exists will not appear on retry.
	if errors.Is(err, booking.ErrJobNotFound) {
		return false
	}

	// Storage failures and timeouts are transient.
	var storageErr *booking.StorageError
	if errors.As(err, &storageErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}
