package booking

import "context"

// SessionEndedEvent names the party responsible for a finished session.
type SessionEndedEvent struct {
	JobID             string `json:"job_id"`
	ResponsibleUserID string `json:"responsible_user_id"`
	SessionTime       int    `json:"session_time"`
}

// Publisher emits lifecycle events. Publish failures never fail the
// transition that produced them; the lifecycle logs and moves on.
type Publisher interface {
	// PublishJobCreated announces a new pending booking that needs
	// translator dispatch.
	PublishJobCreated(ctx context.Context, jobID string) error

	// PublishJobReopened announces a reopened booking that needs a fresh
	// dispatch round with no translator excluded.
	PublishJobReopened(ctx context.Context, jobID string) error

	PublishSessionEnded(ctx context.Context, ev SessionEndedEvent) error
}

// NotificationPayload carries the structured fields of a translator push
// notification. Locale-specific rendering is the delivery provider's
// concern.
type NotificationPayload struct {
	JobID                string   `json:"job_id"`
	FromLanguageID       string   `json:"from_language_id"`
	Language             string   `json:"language"`
	Immediate            string   `json:"immediate"`
	Duration             int      `json:"duration"`
	DurationText         string   `json:"duration_text"`
	Status               string   `json:"status"`
	Gender               string   `json:"gender,omitempty"`
	Certified            string   `json:"certified,omitempty"`
	Due                  string   `json:"due"`
	JobType              string   `json:"job_type"`
	CustomerPhoneType    string   `json:"customer_phone_type"`
	CustomerPhysicalType string   `json:"customer_physical_type"`
	CustomerTown         string   `json:"customer_town,omitempty"`
	CustomerType         string   `json:"customer_type,omitempty"`
	JobFor               []string `json:"job_for"`
	NotificationType     string   `json:"notification_type"`
}

// Notifier is the push-notification delivery collaborator. delay marks the
// batch for a later send window understood by the provider; the engine never
// schedules or sleeps itself.
type Notifier interface {
	Send(ctx context.Context, userIDs []string, jobID string, payload NotificationPayload, message string, delay bool) error
}
