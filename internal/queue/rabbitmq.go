package queue

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConsumer receives deliveries from one durable queue
type RabbitMQConsumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger hclog.Logger
}

// RabbitMQProducer publishes persistent JSON messages to durable queues
type RabbitMQProducer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitMQConsumer connects to amqpURL and declares queueName. Prefetch is
// one so a slow job never holds back messages another worker could take.
func NewRabbitMQConsumer(amqpURL, queueName string, logger hclog.Logger) (*RabbitMQConsumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &RabbitMQConsumer{conn: conn, ch: ch, queue: queueName, logger: logger}, nil
}

// StartConsuming returns the delivery channel. Deliveries must be acked.
func (r *RabbitMQConsumer) StartConsuming() (<-chan amqp.Delivery, error) {
	msgs, err := r.ch.Consume(r.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s: %w", r.queue, err)
	}
	return msgs, nil
}

// Close closes the channel and the connection
func (r *RabbitMQConsumer) Close() {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			r.logger.Warn("failed to close channel", "queue", r.queue, "error", err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			r.logger.Warn("failed to close connection", "queue", r.queue, "error", err)
		}
	}
	r.logger.Info("RabbitMQ consumer closed", "queue", r.queue)
}

// NewRabbitMQProducer connects to url and opens a publishing channel
func NewRabbitMQProducer(url string) (*RabbitMQProducer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitMQProducer{conn: conn, ch: ch}, nil
}

// Publish declares queueName and sends body to it through the default exchange
func (p *RabbitMQProducer) Publish(ctx context.Context, queueName string, body []byte) error {
	if _, err := p.ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	err := p.ch.PublishWithContext(ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQProducer) Close() error {
	var firstErr error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			firstErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
