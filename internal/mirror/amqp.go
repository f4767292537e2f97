package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPMirror publishes snapshots to a durable fanout exchange, one message
// per frame sent.
type AMQPMirror struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// NewAMQPMirror dials RabbitMQ and declares the exchange.
func NewAMQPMirror(url, exchange string) (*AMQPMirror, error) {
	if exchange == "" {
		return nil, fmt.Errorf("exchange name is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPMirror{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
	}, nil
}

func (a *AMQPMirror) Publish(ctx context.Context, payload []byte) error {
	msg := amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		MessageId:       uuid.New().String(),
		Timestamp:       time.Now(),
		Type:            snapshotEvent,
		Body:            payload,
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.ch.PublishWithContext(ctx,
		a.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

func (a *AMQPMirror) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ch != nil {
		a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
