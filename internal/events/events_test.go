package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkbridge/booking-be/internal/booking"
)

type publishedMessage struct {
	routingKey string
	payload    interface{}
}

type fakeBroker struct {
	published []publishedMessage
	err       error
}

func (f *fakeBroker) PublishJSON(_ context.Context, routingKey string, v interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{routingKey: routingKey, payload: v})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_RoutingKeys(t *testing.T) {
	broker := &fakeBroker{}
	p := NewPublisher(broker, testLogger())
	ctx := context.Background()

	require.NoError(t, p.PublishJobCreated(ctx, "job-1"))
	require.NoError(t, p.PublishJobReopened(ctx, "job-2"))
	require.NoError(t, p.PublishDispatch(ctx, "job-3", "user-9"))
	require.NoError(t, p.PublishSessionEnded(ctx, booking.SessionEndedEvent{
		JobID:             "job-4",
		ResponsibleUserID: "user-1",
		SessionTime:       45,
	}))

	require.Len(t, broker.published, 4)
	assert.Equal(t, "booking.created", broker.published[0].routingKey)
	assert.Equal(t, "booking.reopened", broker.published[1].routingKey)
	assert.Equal(t, "booking.dispatch", broker.published[2].routingKey)
	assert.Equal(t, "booking.session_ended", broker.published[3].routingKey)

	created, ok := broker.published[0].payload.(DispatchEvent)
	require.True(t, ok)
	assert.Equal(t, "job-1", created.JobID)
	assert.Equal(t, "created", created.Reason)
	assert.Empty(t, created.ExcludeUserID)

	manual, ok := broker.published[2].payload.(DispatchEvent)
	require.True(t, ok)
	assert.Equal(t, "user-9", manual.ExcludeUserID)
	assert.Equal(t, "manual", manual.Reason)

	ended, ok := broker.published[3].payload.(SessionEndedMessage)
	require.True(t, ok)
	assert.Equal(t, 45, ended.SessionTime)
	assert.Equal(t, "user-1", ended.ResponsibleUserID)
}

func TestPublisher_BrokerFailurePropagates(t *testing.T) {
	broker := &fakeBroker{err: errors.New("channel closed")}
	p := NewPublisher(broker, testLogger())

	err := p.PublishJobCreated(context.Background(), "job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}

func TestDispatchEvent_JSONShape(t *testing.T) {
	body, err := json.Marshal(DispatchEvent{JobID: "job-1", Reason: "created"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_id":"job-1","reason":"created"}`, string(body))

	body, err = json.Marshal(DispatchEvent{JobID: "job-2", ExcludeUserID: "u-1", Reason: "manual"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_id":"job-2","exclude_user_id":"u-1","reason":"manual"}`, string(body))
}
