package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ticketdesk/complain-service/internal/config"
	"github.com/ticketdesk/complain-service/internal/events"
)

type recordingPublisher struct {
	queues   []string
	payloads []any
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.queues = append(p.queues, queue)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestNotificationServiceForwardsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{}
	svc := NewNotificationService(dispatcher, publisher, zap.New(core), config.NotificationConfig{Queue: "complaint_events"})
	svc.RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventComplaintCreated, ComplaintCode: "TIC-1000"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventComplaintReplied, ComplaintCode: "TIC-1000"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventComplaintStatusChanged, ComplaintCode: "TIC-1000"}))

	assert.Equal(t, []string{"complaint_events", "complaint_events", "complaint_events"}, publisher.queues)
	assert.Equal(t, 1, logs.FilterMessage("ComplaintCreated").Len())
	assert.Equal(t, 1, logs.FilterMessage("ComplaintReplied").Len())
	assert.Equal(t, 1, logs.FilterMessage("ComplaintStatusChanged").Len())

	event, ok := publisher.payloads[0].(events.Event)
	require.True(t, ok)
	assert.Equal(t, "TIC-1000", event.ComplaintCode)
}

func TestNotificationServiceWithoutBroker(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, nil, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintCreated}))
}

func TestNotificationServiceReportsPublishFailure(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	NewNotificationService(dispatcher, publisher, zap.NewNop(), config.NotificationConfig{Queue: "q"}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintReplied})
	assert.ErrorContains(t, err, "broker down")
}
