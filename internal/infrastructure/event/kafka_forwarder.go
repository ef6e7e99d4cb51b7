package event

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the forwarder needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder publishes integration events to a Kafka topic, keyed by
// aggregate id so events of one order stay ordered within a partition.
type KafkaForwarder struct {
	writer       MessageWriter
	serializer   *EventSerializer
	eventTypes   []string
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewKafkaWriter creates a kafka-go writer from configuration
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		Transport:    &kafka.Transport{ClientID: cfg.ClientID},
	}
}

// NewKafkaForwarder creates a forwarder for the given routes, IntegrationRoutes by default
func NewKafkaForwarder(writer MessageWriter, serializer *EventSerializer, logger *zap.Logger, eventTypes ...string) *KafkaForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(eventTypes) == 0 {
		eventTypes = IntegrationRoutes
	}
	return &KafkaForwarder{
		writer:       writer,
		serializer:   serializer,
		eventTypes:   eventTypes,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// EventTypes returns the forwarded routes
func (f *KafkaForwarder) EventTypes() []string {
	return f.eventTypes
}

// Handle writes one event to the broker
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	value, err := f.serializer.Wrap(event)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
		},
	}
	if err := f.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("kafka: failed to write %s: %w", event.EventType(), err)
	}

	f.logger.Debug("event forwarded",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// Close flushes and closes the writer
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
