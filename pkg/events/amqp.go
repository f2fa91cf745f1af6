package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

var errNotConfirmed = errors.New("broker did not confirm the message")

// AMQP publishes events as persistent JSON messages to a durable topic
// exchange and waits for the broker to confirm each of them.
type AMQP struct {
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ Publisher = (*AMQP)(nil)

// NewAMQP connects to url and declares exchange.
func NewAMQP(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("could not open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("could not declare exchange %q: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("could not enable publisher confirms: %w", err)
	}

	return &AMQP{
		exchange: exchange,
		conn:     conn,
		channel:  ch,
	}, nil
}

func (p *AMQP) PublishUserCreated(ctx context.Context, event UserCreated) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		UserCreatedRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.CreatedAt,
			Type:         UserCreatedRoutingKey,
			Body:         event.Bytes(),
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish user created event: %w", err)
	}

	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("could not wait for publish confirmation: %w", err)
	}
	if !ok {
		return errNotConfirmed
	}

	return nil
}

// Close closes the channel and the connection.
func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("could not close rabbitmq channel: %w", err)
	}
	if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("could not close rabbitmq connection: %w", err)
	}

	return nil
}
