// Package events publishes game lifecycle events to external observers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types
const (
	TypePlayerConnected      = "playerConnected"
	TypePlayerDisconnected   = "playerDisconnected"
	TypeCollectibleCollected = "collectibleCollected"
)

// Event is one entry on the game event stream
type Event struct {
	Type          string    `json:"type"`
	PlayerID      string    `json:"player_id"`
	CollectibleID string    `json:"collectible_id,omitempty"`
	Value         int       `json:"value,omitempty"`
	Score         int       `json:"score"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher delivers events. Implementations must not block the caller for
// long: the game loop publishes inline.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// NATSPublisher sends events to subject.<type> on a NATS connection
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url and publishes under subject
func NewNATSPublisher(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("multiplayer-game"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

// Subject returns the subject an event of the given type is published on
func Subject(prefix, eventType string) string {
	return prefix + "." + eventType
}

// Publish encodes the event as JSON and hands it to the NATS client buffer
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(Subject(p.subject, event.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close flushes pending events and closes the connection
func (p *NATSPublisher) Close() error {
	if err := p.conn.FlushTimeout(2 * time.Second); err != nil {
		p.logger.Warn("nats flush failed", "error", err)
	}
	p.conn.Close()
	return nil
}
