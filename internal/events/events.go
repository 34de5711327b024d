// Package events publishes a small JSON notification after every successful
// post, so downstream tooling (dashboards, chat bridges) can react without
// polling the queue file. Entirely optional; the poster works without a
// broker.
package events

import (
	"encoding/json"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"autopost/poster-go/internal/utils"
)

type Notifier struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
}

// PostEvent describes one completed publish.
type PostEvent struct {
	Platform   string    `json:"platform"`
	Title      string    `json:"title"`
	ExternalID string    `json:"external_id"`
	PostedAt   time.Time `json:"posted_at"`
	Hostname   string    `json:"hostname"`
}

func Connect(rawURL, queueName string) (*Notifier, error) {
	utils.Info("events connect", "url", redactURL(rawURL), "queue", queueName)
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Notifier{conn: conn, ch: ch, queueName: queueName}, nil
}

func (n *Notifier) Close() {
	if n == nil {
		return
	}
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}

// PostPublished emits the event. A nil notifier is a no-op so callers never
// have to branch on whether the broker is configured.
func (n *Notifier) PostPublished(event PostEvent) error {
	if n == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := n.ch.QueueDeclare(n.queueName, true, false, false, false, nil); err != nil {
		return err
	}
	utils.Info("events publish", "queue", n.queueName, "platform", event.Platform, "external_id", event.ExternalID)
	return n.ch.Publish(
		"",
		n.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	)
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if parsed.User == nil {
		return parsed.String()
	}
	username := parsed.User.Username()
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(username, "REDACTED")
	} else {
		parsed.User = url.User(username)
	}
	return parsed.String()
}
