package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/notify"
	"github.com/dhima/edge-cache/pkg/clock"
)

// CacheEvent is the Kafka message published for every cache notification.
type CacheEvent struct {
	EventID   string          `json:"event_id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// Publisher emits cache events to Kafka. It implements notify.Notifier.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
	clock  clock.Clock

	closeOnce sync.Once
	closeErr  error
}

var _ notify.Notifier = (*Publisher)(nil)

// NewPublisher configures a writer for topic on brokers. Messages are keyed
// by event name so every update of one concern lands on the same partition.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			WriteTimeout: 10 * time.Second,
			BatchTimeout: 10 * time.Millisecond,
		},
		logger: logger.Named("kafka"),
		clock:  clock.RealClock{},
	}
}

// Emit wraps payload in a CacheEvent and publishes it.
func (p *Publisher) Emit(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &notify.Error{Event: event, Err: fmt.Errorf("marshal payload: %w", err)}
	}
	ev := CacheEvent{
		EventID:   uuid.New().String(),
		Event:     event,
		Payload:   raw,
		EmittedAt: p.clock.Now().UTC(),
	}
	if err := p.Publish(ctx, ev); err != nil {
		return &notify.Error{Event: event, Err: err}
	}
	return nil
}

// Publish writes one event to the topic.
func (p *Publisher) Publish(ctx context.Context, ev CacheEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Event),
		Value: value,
		Time:  ev.EmittedAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Event)},
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event", ev.Event),
			zap.String("event_id", ev.EventID),
			zap.Error(err),
		)
		return fmt.Errorf("write message: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event", ev.Event),
		zap.String("event_id", ev.EventID),
		zap.String("topic", p.writer.Topic),
	)
	return nil
}

// Close flushes pending messages and closes the writer. Later calls return
// the first result.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.writer.Close()
	})
	return p.closeErr
}
