// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package notify publishes auth events to a message broker.
package notify

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/oops"

	"github.com/holomush/holoauth/internal/auth"
)

// DefaultQueue receives password reset events when no queue is configured.
const DefaultQueue = "holoauth.password_reset"

// publishTimeout bounds a single publish when the caller's context has none.
const publishTimeout = 5 * time.Second

// channel is the part of *amqp.Channel the notifier uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQNotifier implements auth.ResetNotifier by publishing each event as
// JSON to a durable queue on the default exchange.
type RabbitMQNotifier struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

var _ auth.ResetNotifier = (*RabbitMQNotifier)(nil)

// NewRabbitMQNotifier dials url and declares queue (DefaultQueue if empty).
func NewRabbitMQNotifier(url, queue string) (*RabbitMQNotifier, error) {
	if strings.TrimSpace(url) == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("rabbitmq url is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, oops.Code("NOTIFY_CONNECT_FAILED").With("operation", "dial").Wrap(err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, oops.Code("NOTIFY_CONNECT_FAILED").With("operation", "open channel").Wrap(err)
	}

	n, err := newNotifier(ch, queue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	n.conn = conn
	return n, nil
}

func newNotifier(ch channel, queue string) (*RabbitMQNotifier, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, oops.Code("NOTIFY_CONNECT_FAILED").
			With("operation", "declare queue").
			With("queue", queue).
			Wrap(err)
	}
	return &RabbitMQNotifier{ch: ch, queue: queue}, nil
}

// Queue returns the queue events are published to.
func (n *RabbitMQNotifier) Queue() string {
	return n.queue
}

// NotifyReset publishes event. The reset token is part of the payload, so
// the queue must only be readable by the mailer.
func (n *RabbitMQNotifier) NotifyReset(ctx context.Context, event auth.PasswordResetRequested) error {
	body, err := json.Marshal(event)
	if err != nil {
		return oops.Code("NOTIFY_ENCODE_FAILED").Wrap(err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ulid.Make().String(),
		Timestamp:    event.RequestedAt,
		Type:         "password_reset_requested",
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ch.PublishWithContext(ctx, "", n.queue, false, false, msg); err != nil {
		return oops.Code("NOTIFY_PUBLISH_FAILED").
			With("queue", n.queue).
			With("user_id", event.UserID.String()).
			Wrap(err)
	}
	return nil
}

// Close releases the channel and the connection.
func (n *RabbitMQNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var chErr, connErr error
	if n.ch != nil {
		chErr = n.ch.Close()
	}
	if n.conn != nil {
		connErr = n.conn.Close()
	}
	if chErr != nil || connErr != nil {
		return oops.Code("NOTIFY_CLOSE_FAILED").Join(chErr, connErr)
	}
	return nil
}
