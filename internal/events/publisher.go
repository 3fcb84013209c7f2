// Package events carries schedule commit notifications over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

const TypeScheduleCommitted = "schedule_committed"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch      channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, queue: queue, timeout: timeout}
}

// DeclareQueue declares the durable queue both the API and the notifier use.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // not auto-deleted without consumers
		false,
		false,
		nil,
	)
}

func (p *Publisher) ScheduleCommitted(ctx context.Context, event domain.CommitEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode commit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = p.ch.PublishWithContext(
		ctx,
		"",      // default exchange
		p.queue, // routing key is the queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%s@%d", event.SessionID, event.NewVersion),
			Timestamp:    event.CommittedAt,
			Type:         TypeScheduleCommitted,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish commit event: %w", err)
	}
	return nil
}

// Decode parses a delivery published by ScheduleCommitted.
func Decode(d amqp.Delivery) (domain.CommitEvent, error) {
	if d.Type != "" && d.Type != TypeScheduleCommitted {
		return domain.CommitEvent{}, fmt.Errorf("unexpected message type %q", d.Type)
	}
	var event domain.CommitEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return domain.CommitEvent{}, fmt.Errorf("decode commit event: %w", err)
	}
	return event, nil
}
