package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/natefinch/lumberjack"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/logger"
)

// Consumer listens to the booking queue and appends one line per event to
// Out.  Run keeps reconnecting until its context is cancelled.
type Consumer struct {
	URL string
	Out io.Writer
	Log logrus.FieldLogger
}

// NewConsumer returns a consumer writing to a rotating file at logFile.
func NewConsumer(url, logFile string, log logrus.FieldLogger) *Consumer {
	return &Consumer{
		URL: url,
		Out: &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		},
		Log: logger.OrStandard(log).WithField("component", "booking-consumer"),
	}
}

// Run dials the broker, consumes, and redials with backoff when the
// connection drops.  It returns ctx.Err() once ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warnf("failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warnf("consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warnf("set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(BookingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Log.Errorf("handle message failed: %v", err)
			_ = d.Nack(false, false) // do not requeue a poison message
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and writes its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if _, err := io.WriteString(c.Out, FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-readable line.
func FormatLine(ev BookingEvent) string {
	user := ev.UserID
	if user == "" {
		user = "guest"
	}
	line := fmt.Sprintf("[%s] %s | booking_id=%s | user_id=%s | email=%q | type=%s | status=%s",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, user, ev.Email, ev.PropertyType, ev.Status)
	if ev.PreviousStatus != "" {
		line += " | previous=" + ev.PreviousStatus
	}
	if ev.PreferredDate != "" {
		line += " | preferred_date=" + ev.PreferredDate
	}
	return line + "\n"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
