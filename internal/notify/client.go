// Package notify delivers translator push notifications through a
// OneSignal-compatible HTTP API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tolkbridge/booking-be/internal/booking"
)

const (
	soundNormal    = "normal_booking"
	soundEmergency = "emergency_booking"

	notificationTitle = "TolkBridge"

	sendAfterLayout = "2006-01-02 15:04:05 MST"
)

// Config holds push provider settings.
type Config struct {
	BaseURL     string
	AppID       string
	APIKey      string
	Environment string
	Timeout     time.Duration
}

// Client sends push notifications to translators by user-id tag.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

var _ booking.Notifier = (*Client)(nil)

// NewClient creates a push notification client.
func NewClient(config *Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// tag is a single entry of the provider's tag filter expression.
type tag struct {
	Key      string `json:"key,omitempty"`
	Relation string `json:"relation,omitempty"`
	Value    string `json:"value,omitempty"`
	Operator string `json:"operator,omitempty"`
}

// notification is the provider request body.
type notification struct {
	AppID         string                      `json:"app_id"`
	Tags          []tag                       `json:"tags"`
	Data          booking.NotificationPayload `json:"data"`
	Title         map[string]string           `json:"title"`
	Contents      map[string]string           `json:"contents"`
	IOSBadgeType  string                      `json:"ios_badgeType"`
	IOSBadgeCount int                         `json:"ios_badgeCount"`
	AndroidSound  string                      `json:"android_sound"`
	IOSSound      string                      `json:"ios_sound"`
	SendAfter     string                      `json:"send_after,omitempty"`
}

// Send pushes the payload to every listed user. A delayed send is scheduled
// for the next business-hours window instead of delivering immediately.
func (c *Client) Send(ctx context.Context, userIDs []string, jobID string, payload booking.NotificationPayload, message string, delay bool) error {
	c.logger.Info("Push notification initiated",
		slog.String("job_id", jobID),
		slog.Int("recipients", len(userIDs)),
		slog.Bool("delay", delay),
	)

	payload.JobID = jobID

	sound := soundEmergency
	if payload.NotificationType == "suitable_job" && payload.Immediate == "no" {
		sound = soundNormal
	}

	body := notification{
		AppID:         c.config.AppID,
		Tags:          userTags(userIDs),
		Data:          payload,
		Title:         map[string]string{"en": notificationTitle},
		Contents:      map[string]string{"en": message},
		IOSBadgeType:  "Increase",
		IOSBadgeCount: 1,
		AndroidSound:  sound,
		IOSSound:      sound + ".mp3",
	}

	if delay {
		body.SendAfter = NextBusinessTime(c.now()).Format(sendAfterLayout)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/notifications", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Push provider rejected notification",
			slog.String("job_id", jobID),
			slog.Int("status", resp.StatusCode),
			slog.String("response", string(respBody)),
		)
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	c.logger.Info("Push notification sent",
		slog.String("job_id", jobID),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}

// userTags builds an OR filter matching any of the given user ids.
func userTags(userIDs []string) []tag {
	tags := make([]tag, 0, len(userIDs)*2)
	for i, id := range userIDs {
		if i > 0 {
			tags = append(tags, tag{Operator: "OR"})
		}
		tags = append(tags, tag{Key: "user_id", Relation: "=", Value: id})
	}
	return tags
}
