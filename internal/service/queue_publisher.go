package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/logger"
	"github.com/iliyamo/cleaning-booking/internal/queue"
)

// EventPublisher receives booking events after the change is persisted.
// BookingService ignores its errors beyond logging them.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// AMQPPublisher publishes booking events to RabbitMQ.  Each call opens its
// own connection; booking writes are rare enough that pooling is not
// worth holding a connection open.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
	log         logrus.FieldLogger
}

func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
	return &AMQPPublisher{url: url, dialTimeout: 2 * time.Second, log: logger.OrStandard(log)}
}

// Publish sends ev to the booking queue as a persistent message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		p.log.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue.BookingQueueName, true, false, false, false, nil); err != nil {
		p.log.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(ev.Type),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueueName, false, false, pub); err != nil {
		p.log.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
