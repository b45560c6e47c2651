package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	USER_INFO_UPDATED_QUEUE     = "user.info.updated"
	COMMENT_SUBMITTED_QUEUE     = "comment.submitted"
	REPLY_SUBMITTED_QUEUE       = "reply.submitted"
	REACTION_SUBMITTED_QUEUE    = "reaction.submitted"
	ENROLLMENT_RECORDED_QUEUE   = "enrollment.recorded"
	NEWSLETTER_SUBSCRIBED_QUEUE = "newsletter.subscribed"
)

var queues = []string{
	USER_INFO_UPDATED_QUEUE,
	COMMENT_SUBMITTED_QUEUE,
	REPLY_SUBMITTED_QUEUE,
	REACTION_SUBMITTED_QUEUE,
	ENROLLMENT_RECORDED_QUEUE,
	NEWSLETTER_SUBSCRIBED_QUEUE,
}

type MQConn struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

// New dials the broker, retrying with exponential backoff for up to a minute,
// and declares every queue the service publishes to or consumes from.
func New(connString string) (*MQConn, error) {
	var conn *amqp.Connection
	dial := func() error {
		c, err := amqp.Dial(connString)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute
	if err := backoff.Retry(dial, policy); err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue(%s): %w", q, err)
		}
	}

	return &MQConn{
		conn: conn,
		ch:   ch,
	}, nil
}

// Publish sends body as a persistent JSON message to queue.
func (c *MQConn) Publish(ctx context.Context, queue string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

// Consume opens a dedicated channel so a slow consumer never blocks publishing.
func (c *MQConn) Consume(queue string) (<-chan amqp.Delivery, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}

	return ch.Consume(queue, "", false, false, false, false, nil)
}

func (c *MQConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
