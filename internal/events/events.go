// Package events publishes booking lifecycle events to RabbitMQ and
// defines the message shapes the dispatch worker consumes.
package events

import (
	"context"
	"log/slog"

	"github.com/tolkbridge/booking-be/internal/booking"
)

// Routing keys for booking lifecycle events.
const (
	RoutingKeyJobCreated   = "booking.created"
	RoutingKeyJobReopened  = "booking.reopened"
	RoutingKeyDispatch     = "booking.dispatch"
	RoutingKeySessionEnded = "booking.session_ended"
)

// DispatchEvent asks the dispatch worker to fan a booking out to translators.
type DispatchEvent struct {
	JobID         string `json:"job_id"`
	ExcludeUserID string `json:"exclude_user_id,omitempty"`
	Reason        string `json:"reason"`
}

// SessionEndedMessage carries session completion data for downstream consumers.
type SessionEndedMessage struct {
	JobID             string `json:"job_id"`
	ResponsibleUserID string `json:"responsible_user_id"`
	SessionTime       int    `json:"session_time"`
}

// broker is the slice of the RabbitMQ client the publisher needs.
type broker interface {
	PublishJSON(ctx context.Context, routingKey string, v interface{}) error
}

// Publisher emits booking events to the message broker.
type Publisher struct {
	broker broker
	logger *slog.Logger
}

var _ booking.Publisher = (*Publisher)(nil)

// NewPublisher creates a Publisher backed by the given broker.
func NewPublisher(b broker, logger *slog.Logger) *Publisher {
	return &Publisher{
		broker: b,
		logger: logger,
	}
}

// PublishJobCreated announces a freshly created booking.
func (p *Publisher) PublishJobCreated(ctx context.Context, jobID string) error {
	ev := DispatchEvent{JobID: jobID, Reason: "created"}
	if err := p.broker.PublishJSON(ctx, RoutingKeyJobCreated, ev); err != nil {
		p.logger.Error("Failed to publish job created event",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return err
	}

	p.logger.Debug("Published job created event", slog.String("job_id", jobID))
	return nil
}

// PublishJobReopened announces a reopened booking.
func (p *Publisher) PublishJobReopened(ctx context.Context, jobID string) error {
	ev := DispatchEvent{JobID: jobID, Reason: "reopened"}
	if err := p.broker.PublishJSON(ctx, RoutingKeyJobReopened, ev); err != nil {
		p.logger.Error("Failed to publish job reopened event",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return err
	}

	p.logger.Debug("Published job reopened event", slog.String("job_id", jobID))
	return nil
}

// PublishDispatch requests a manual fan-out for a booking.
func (p *Publisher) PublishDispatch(ctx context.Context, jobID, excludeUserID string) error {
	ev := DispatchEvent{JobID: jobID, ExcludeUserID: excludeUserID, Reason: "manual"}
	if err := p.broker.PublishJSON(ctx, RoutingKeyDispatch, ev); err != nil {
		p.logger.Error("Failed to publish dispatch event",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		return err
	}

	p.logger.Debug("Published dispatch event", slog.String("job_id", jobID))
	return nil
}

// PublishSessionEnded announces a completed session.
func (p *Publisher) PublishSessionEnded(ctx context.Context, ev booking.SessionEndedEvent) error {
	msg := SessionEndedMessage{
		JobID:             ev.JobID,
		ResponsibleUserID: ev.ResponsibleUserID,
		SessionTime:       ev.SessionTime,
	}
	if err := p.broker.PublishJSON(ctx, RoutingKeySessionEnded, msg); err != nil {
		p.logger.Error("Failed to publish session ended event",
			slog.String("job_id", ev.JobID),
			slog.Any("error", err),
		)
		return err
	}

	p.logger.Debug("Published session ended event",
		slog.String("job_id", ev.JobID),
		slog.Int("session_time", ev.SessionTime),
	)
	return nil
}
