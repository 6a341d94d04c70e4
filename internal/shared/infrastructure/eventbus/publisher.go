// Package eventbus publishes bridge lifecycle events. RabbitMQ is used when
// configured; otherwise a no-op publisher keeps the call sites unconditional.
package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// Publisher sends a message to the event bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// NoopPublisher logs and drops every message.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}

// RecordingPublisher captures published messages in memory for tests.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []RecordedMessage
}

// RecordedMessage is one captured publish call.
type RecordedMessage struct {
	RoutingKey string
	Payload    []byte
}

// NewRecordingPublisher creates an in-memory publisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, RecordedMessage{RoutingKey: routingKey, Payload: payload})
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Messages returns a copy of everything published so far.
func (p *RecordingPublisher) Messages() []RecordedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}
