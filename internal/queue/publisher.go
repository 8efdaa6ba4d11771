package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the durable topic exchange booking events are sent to.
const ExchangeName = "bookings"

// Publisher sends BookingEvents to RabbitMQ.  Each call dials the broker,
// publishes one persistent message and closes the connection.
type Publisher struct {
	url string
	log *slog.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, log: log}
}

// Publish delivers ev with its Type as routing key.  Failures are returned
// for the caller to log.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
	msg, err := newPublishing(ev, time.Now())
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}

	if err := ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		ev.Type,      // routing key
		false,        // mandatory
		false,        // immediate
		msg,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", ev.Type, err)
	}
	p.log.Debug("rabbitmq: event published", "type", ev.Type, "booking_id", ev.BookingID, "message_id", msg.MessageId)
	return nil
}

func newPublishing(ev BookingEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         ev.Type,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // autoDelete
		false,        // internal
		false,        // noWait
		nil,          // args
	)
}
