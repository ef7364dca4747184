package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout bounds connecting and the AMQP handshake.
const DefaultDialTimeout = 3 * time.Second

// Publisher hands activation links to the broker instead of mailing them
// inline.
type Publisher struct {
	url         string
	log         *log.Logger
	DialTimeout time.Duration
}

func NewPublisher(url string, l *log.Logger) *Publisher {
	return &Publisher{url: url, log: l, DialTimeout: DefaultDialTimeout}
}

// dial connects within DialTimeout, or sooner when ctx has an earlier
// deadline.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// SendActivation publishes an ActivationRequestedEvent to the
// user.activation queue as a persistent message.
func (p *Publisher) SendActivation(ctx context.Context, email, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := p.dial(ctx)
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

	if err := declareActivationQueue(ch); err != nil {
		p.log.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ActivationRequestedEvent{
		Email:       email,
		Link:        link,
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ActivationQueueName, false, false, pub); err != nil {
		p.log.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// declareActivationQueue declares the durable activation queue.
func declareActivationQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		ActivationQueueName, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	)
	return err
}
