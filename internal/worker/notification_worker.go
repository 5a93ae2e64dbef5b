package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/events"
	"github.com/ticketdesk/complain-service/internal/service"
)

const deliveryTimeout = 10 * time.Second

// ErrQueueFull is returned when the worker cannot accept more events.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned for events published after Stop.
var ErrStopped = errors.New("notification worker stopped")

// NotificationWorker delivers events to subscribers off the request path.
// It satisfies events.Dispatcher so services can publish to it directly.
type NotificationWorker struct {
	inner  events.Dispatcher
	logger *zap.Logger
	queue  chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker buffers up to size events in front of inner.
func NewNotificationWorker(inner events.Dispatcher, logger *zap.Logger, size int) *NotificationWorker {
	if size <= 0 {
		size = 1
	}
	return &NotificationWorker{
		inner:  inner,
		logger: logger,
		queue:  make(chan events.Event, size),
	}
}

// Subscribe registers handler on the underlying dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Publish enqueues event without waiting for delivery.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the delivery loop. Deliveries inherit values from ctx but
// not its cancellation, so queued events survive shutdown until Stop drains them.
func (w *NotificationWorker) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			w.deliver(base, event)
		}
	}()
}

// Stop rejects new events and waits for queued ones to be delivered.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()
	if err := w.inner.Publish(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

// StartNotificationWorker registers notification handlers and starts delivery.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, w *NotificationWorker) {
	if notificationService == nil || w == nil {
		return
	}
	notificationService.RegisterHandlers()
	w.Start(ctx)
}
