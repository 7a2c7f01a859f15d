// Package amqp publishes and consumes the expense sync messages that keep
// the export ledger in step with local writes.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Handlers receives decoded messages from Consume. A nil handler skips its
// kind with an ack, so partial consumers stay possible.
type Handlers struct {
	OnSync   func(context.Context, *ExpenseSyncMessage) error
	OnDelete func(context.Context, *ExpenseDeleteMessage) error
}

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
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key mirrors the queue name on a direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishExpenseSync enqueues a sync request for one expense.
func (c *Client) PublishExpenseSync(ctx context.Context, userID, expenseID int64) error {
	msg := NewExpenseSyncMessage(userID, expenseID)
	if err := c.publish(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense sync message",
		"expense_id", expenseID,
		"user_id", userID,
		"queue", c.queueName)
	return nil
}

// PublishExpenseDelete enqueues a ledger removal for a deleted expense.
func (c *Client) PublishExpenseDelete(ctx context.Context, msg *ExpenseDeleteMessage) error {
	msg.Kind = KindExpenseDelete
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := c.publish(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published expense delete message",
		"expense_id", msg.ExpenseID,
		"user_id", msg.UserID,
		"queue", c.queueName)
	return nil
}

func (c *Client) publish(ctx context.Context, msg interface{ ToJSON() ([]byte, error) }) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName,
		false, // mandatory
		false, // immediate
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

// Consume reads the queue until the context ends, dispatching each message
// by kind. Handler failures nack with requeue; undecodable messages are
// dropped.
func (c *Client) Consume(ctx context.Context, handlers Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming sync messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			if err := dispatch(ctx, delivery.Body, handlers); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message", "error", err)
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
		}
	}
}

func dispatch(ctx context.Context, body []byte, handlers Handlers) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		// Undecodable payloads would poison the queue if requeued; log via
		// the caller and drop.
		slog.Error("Dropping undecodable message", "error", err)
		return nil
	}

	switch env.Kind {
	case KindExpenseSync:
		if handlers.OnSync == nil {
			return nil
		}
		msg, err := ExpenseSyncMessageFromJSON(body)
		if err != nil {
			return fmt.Errorf("decode sync message: %w", err)
		}
		return handlers.OnSync(ctx, msg)
	case KindExpenseDelete:
		if handlers.OnDelete == nil {
			return nil
		}
		msg, err := ExpenseDeleteMessageFromJSON(body)
		if err != nil {
			return fmt.Errorf("decode delete message: %w", err)
		}
		return handlers.OnDelete(ctx, msg)
	default:
		slog.Warn("Dropping message of unknown kind", "kind", env.Kind)
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
