package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// Queue receiving task lifecycle events.
const taskQueue = "task_events"

// Event kinds published by the task service.
const (
	TaskCreated   = "task.created"
	TaskCompleted = "task.completed"
	TaskDeleted   = "task.deleted"
)

// Client holds the AMQP connection and channel used to publish task events.
// A nil *Client is a valid no-op publisher, so callers can run without a
// broker configured.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds AMQP connection details.
type Config struct {
	URL string
}

// NewClient connects to the broker and declares the task event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		taskQueue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", taskQueue, err)
	}

	log.Printf("AMQP client connected and %s queue declared", taskQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the AMQP connection and channel.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred during AMQP client close: %v", errs)
	}
	return nil
}

// PublishTaskEvent publishes a JSON task event to the task queue. Publishing
// on a nil client is a no-op; a publish failure is returned to the caller to
// log, never to abort the request that triggered it.
func (c *Client) PublishTaskEvent(kind string, payload map[string]interface{}) error {
	if c == nil || c.channel == nil {
		return nil
	}

	message := map[string]interface{}{
		"kind":    kind,
		"payload": payload,
	}
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	err = c.channel.Publish(
		"",        // exchange: default exchange
		taskQueue, // routing key: the queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}
	return nil
}
