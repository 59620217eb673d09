// Package amqp publishes and consumes ledger sync messages over a durable
// RabbitMQ direct exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}
	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishLedgerSync publishes a sync request for one transaction.
func (c *Client) PublishLedgerSync(ctx context.Context, id string, version int64) error {
	body, err := wrap(KindLedgerSync, LedgerSyncMessage{ID: id, Version: version})
	if err != nil {
		return err
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published ledger sync message",
		"transaction_id", id,
		"version", version,
		"queue", c.queueName)
	return nil
}

// PublishLedgerDelete publishes a delete request for one transaction.
func (c *Client) PublishLedgerDelete(ctx context.Context, id string) error {
	body, err := wrap(KindLedgerDelete, LedgerDeleteMessage{ID: id})
	if err != nil {
		return err
	}
	if err := c.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published ledger delete message",
		"transaction_id", id,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeMessages consumes the sync queue until ctx ends, dispatching by
// message kind. Handler failures are nacked with requeue; undecodable
// deliveries are dropped.
func (c *Client) ConsumeMessages(
	ctx context.Context,
	onSync func(context.Context, *LedgerSyncMessage) error,
	onDelete func(context.Context, *LedgerDeleteMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack (we want manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming ledger sync messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			if err := c.dispatch(ctx, delivery.Body, onSync, onDelete); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "error", err)
				delivery.Nack(false, true) // requeue for retry
				continue
			}
			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(
	ctx context.Context,
	body []byte,
	onSync func(context.Context, *LedgerSyncMessage) error,
	onDelete func(context.Context, *LedgerDeleteMessage) error,
) error {
	env, err := DecodeEnvelope(body)
	if err != nil {
		// Undecodable messages would loop forever if requeued; log and drop.
		slog.ErrorContext(ctx, "Dropping undecodable message", "error", err)
		return nil
	}
	switch env.Kind {
	case KindLedgerSync:
		var msg LedgerSyncMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			slog.ErrorContext(ctx, "Dropping malformed sync payload", "error", err)
			return nil
		}
		return onSync(ctx, &msg)
	case KindLedgerDelete:
		var msg LedgerDeleteMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			slog.ErrorContext(ctx, "Dropping malformed delete payload", "error", err)
			return nil
		}
		return onDelete(ctx, &msg)
	default:
		slog.WarnContext(ctx, "Dropping message of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
