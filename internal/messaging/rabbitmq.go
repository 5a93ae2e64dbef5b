package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Publisher delivers JSON payloads to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any) error
}

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes persistent messages to durable queues.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   channel
	now  func() time.Time

	mu       sync.Mutex
	declared map[string]struct{}
}

// Connect dials the broker and opens a channel.
func Connect(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return newRabbitMQ(conn, ch), nil
}

func newRabbitMQ(conn *amqp.Connection, ch channel) *RabbitMQ {
	return &RabbitMQ{conn: conn, ch: ch, now: time.Now, declared: make(map[string]struct{})}
}

// Publish declares queue on first use and sends payload as JSON.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.declared[queue]; !ok {
		if _, err := r.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		r.declared[queue] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    r.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	var err error
	if r.ch != nil {
		err = r.ch.Close()
	}
	if r.conn != nil {
		if cerr := r.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
