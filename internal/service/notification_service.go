package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/config"
	"github.com/ticketdesk/complain-service/internal/events"
	"github.com/ticketdesk/complain-service/internal/messaging"
)

// NotificationService forwards complaint events to the log and, when a
// broker is configured, to a queue.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  messaging.Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher messaging.Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintReplied, n.handleComplaintReplied)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.String("complaint_code", event.ComplaintCode), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleComplaintReplied(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintReplied", zap.String("complaint_code", event.ComplaintCode), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged", zap.String("complaint_code", event.ComplaintCode), zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil {
		return nil
	}
	if err := n.publisher.Publish(ctx, n.cfg.Queue, event); err != nil {
		return err
	}
	n.logger.Debug("event forwarded",
		zap.String("queue", n.cfg.Queue),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	return nil
}
