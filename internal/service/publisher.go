package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/gig-board/internal/model"
	"github.com/iliyamo/gig-board/internal/queue"
)

// EventPublisher announces persisted gigs to the rest of the system.
type EventPublisher interface {
	PublishGigCreated(ctx context.Context, ev queue.GigCreatedEvent) error
}

// RabbitPublisher publishes events to the gig.created queue. Each publish
// opens its own connection and channel, so the publisher holds no state
// and is safe for concurrent use.
type RabbitPublisher struct {
	URL string
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{URL: url}
}

// PublishGigCreated declares the durable queue (idempotent) and publishes
// ev as a persistent JSON message.
func (p *RabbitPublisher) PublishGigCreated(ctx context.Context, ev queue.GigCreatedEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.GigCreatedQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue.GigCreatedQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// gigCreatedEvent builds the event payload for a stored gig.
func gigCreatedEvent(g *model.Gig) queue.GigCreatedEvent {
	return queue.GigCreatedEvent{
		GigID:     g.ID,
		Title:     g.Title,
		Price:     g.Price,
		Location:  g.Location,
		Category:  g.Category,
		Contact:   g.ContactName,
		CreatedAt: g.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
