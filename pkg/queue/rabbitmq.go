package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"todos/pkg/config"
	"todos/pkg/eventbus"
	"todos/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const NotificationExchange = "notifications.events"

var ErrDeliveriesClosed = errors.New("relay delivery channel closed")

const (
	minReconnectDelay = time.Second
	maxReconnectDelay = 30 * time.Second
)

// Channel is the subset of *amqp.Channel the relay uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// DialFunc opens a fresh channel. The returned closer, when non-nil, owns the
// connection behind it.
type DialFunc func() (Channel, io.Closer, error)

// Relay copies notification events between instances through a fanout
// exchange. Every instance binds its own exclusive queue, so each event
// reaches every other instance once. Messages are tagged with the sender's
// instance id and an instance ignores its own.
type Relay struct {
	mu         sync.RWMutex
	conn       io.Closer
	channel    Channel
	queue      string
	dial       DialFunc
	minDelay   time.Duration
	maxDelay   time.Duration
	instanceID string
	logger     *logger.Logger
}

func NewRabbitMQRelay(cfg *config.Config, instanceID string, log *logger.Logger) (*Relay, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	dial := func() (Channel, io.Closer, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		channel, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to open channel: %w", err)
		}
		return channel, conn, nil
	}

	channel, conn, err := dial()
	if err != nil {
		return nil, err
	}

	relay, err := NewRelay(channel, instanceID, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	relay.conn = conn
	relay.dial = dial

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)
	return relay, nil
}

// NewRelay declares the exchange and this instance's queue on channel. The
// relay cannot reconnect unless a dialer is set with WithDialer.
func NewRelay(channel Channel, instanceID string, log *logger.Logger) (*Relay, error) {
	queue, err := declareTopology(channel)
	if err != nil {
		return nil, err
	}

	return &Relay{
		channel:    channel,
		queue:      queue,
		minDelay:   minReconnectDelay,
		maxDelay:   maxReconnectDelay,
		instanceID: instanceID,
		logger:     log.With("component", "relay"),
	}, nil
}

// WithDialer sets how Supervise reopens the channel after it closes.
func (r *Relay) WithDialer(dial DialFunc) *Relay {
	r.dial = dial
	return r
}

func declareTopology(channel Channel) (string, error) {
	err := channel.ExchangeDeclare(
		NotificationExchange, // name
		"fanout",             // type
		true,                 // durable
		false,                // auto-deleted
		false,                // internal
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		channel.Close()
		return "", fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(q.Name, "", NotificationExchange, false, nil); err != nil {
		channel.Close()
		return "", fmt.Errorf("failed to bind queue: %w", err)
	}
	return q.Name, nil
}

func (r *Relay) InstanceID() string {
	return r.instanceID
}

func (r *Relay) Publish(ctx context.Context, ev eventbus.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	r.mu.RLock()
	channel := r.channel
	r.mu.RUnlock()

	err = channel.PublishWithContext(ctx,
		NotificationExchange, // exchange
		"",                   // routing key, ignored by fanout
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			AppId:        r.instanceID,
			MessageId:    ev.ID,
			Body:         body,
			DeliveryMode: amqp.Transient,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", ev.ID, err)
	}

	r.logger.Debug("published event %s", ev.ID)
	return nil
}

// Run hands every event from other instances to sink until ctx is done.
func (r *Relay) Run(ctx context.Context, sink func(eventbus.Event)) error {
	r.mu.RLock()
	channel, queue := r.channel, r.queue
	r.mu.RUnlock()

	msgs, err := channel.Consume(
		queue, // queue
		"",      // consumer
		false,   // auto-ack
		true,    // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	r.logger.Info("Started consuming from queue %s", queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			r.handle(msg, sink)
		}
	}
}

// Supervise runs the consumer until ctx is done, reopening the channel with
// exponential backoff whenever it closes.
func (r *Relay) Supervise(ctx context.Context, sink func(eventbus.Event)) {
	delay := r.minDelay
	for {
		err := r.Run(ctx, sink)
		if ctx.Err() != nil {
			return
		}
		r.logger.Warn("Consumer stopped: %v; reconnecting in %s", err, delay)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			delay *= 2
			if delay > r.maxDelay {
				delay = r.maxDelay
			}

			if err := r.reconnect(); err != nil {
				r.logger.Error("Reconnect failed: %v; retrying in %s", err, delay)
				continue
			}
			r.logger.Info("Reconnected to RabbitMQ")
			delay = r.minDelay
			break
		}
	}
}

func (r *Relay) reconnect() error {
	if r.dial == nil {
		return errors.New("relay has no dialer")
	}

	channel, conn, err := r.dial()
	if err != nil {
		return err
	}
	queue, err := declareTopology(channel)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return err
	}

	r.mu.Lock()
	oldChannel, oldConn := r.channel, r.conn
	r.channel, r.conn, r.queue = channel, conn, queue
	r.mu.Unlock()

	oldChannel.Close()
	if oldConn != nil {
		oldConn.Close()
	}
	return nil
}

func (r *Relay) handle(msg amqp.Delivery, sink func(eventbus.Event)) {
	if msg.AppId == r.instanceID {
		msg.Ack(false)
		return
	}

	var ev eventbus.Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		r.logger.Error("Failed to unmarshal relayed event: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	sink(ev)
	msg.Ack(false)
}

func (r *Relay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
