// Package notify publishes fire-and-forget domain events for downstream
// consumers (email/SMS dispatch, analytics). Delivery is best effort: the
// payments core never waits on or consumes delivery confirmations.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Routing keys for marketplace events.
const (
	EventPaymentCompleted      = "payment.completed"
	EventPaymentFailed         = "payment.failed"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// exchangeName is the durable topic exchange all marketplace events use.
const exchangeName = "marketplace_events"

// Event is the envelope published for every domain event.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any)
	Close()
}

// LogPublisher logs events instead of publishing them. Used when no AMQP
// broker is configured, and in tests.
type LogPublisher struct{}

// Publish logs the event at debug level.
func (p *LogPublisher) Publish(_ context.Context, eventType string, payload map[string]any) {
	log.WithField("event", eventType).WithField("payload", payload).Debug("event publish skipped (no broker)")
}

// Close is a no-op.
func (p *LogPublisher) Close() {}

// AMQPPublisher publishes events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher connects to the broker and declares the event exchange.
func NewAMQPPublisher(amqpURL string) (*AMQPPublisher, error) {
	conn, errDial := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if errDial != nil {
		return nil, errDial
	}
	channel, errChannel := conn.Channel()
	if errChannel != nil {
		conn.Close()
		return nil, errChannel
	}
	if errDeclare := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); errDeclare != nil {
		channel.Close()
		conn.Close()
		return nil, errDeclare
	}
	return &AMQPPublisher{conn: conn, channel: channel}, nil
}

// Publish sends the event to the exchange. Failures are logged and dropped;
// the caller's request must not fail because the broker is down.
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload map[string]any) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	body, errMarshal := json.Marshal(event)
	if errMarshal != nil {
		log.WithError(errMarshal).WithField("event", eventType).Error("marshal event failed")
		return
	}
	errPublish := p.channel.PublishWithContext(ctx, exchangeName, eventType, false, false, amqp091.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.OccurredAt,
		Body:        body,
	})
	if errPublish != nil {
		log.WithError(errPublish).WithField("event", eventType).Warn("event publish failed")
	}
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NewPublisher returns an AMQP publisher when a URL is configured, falling
// back to the log-only publisher otherwise.
func NewPublisher(amqpURL string) Publisher {
	if amqpURL == "" {
		return &LogPublisher{}
	}
	publisher, errConnect := NewAMQPPublisher(amqpURL)
	if errConnect != nil {
		log.WithError(errConnect).Warn("amqp unavailable, events will be logged only")
		return &LogPublisher{}
	}
	return publisher
}
