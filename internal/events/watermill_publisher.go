package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/learning-content-service/internal/config"
)

const metadataEventType = "event_type"

var ErrSubscribeUnsupported = errors.New("subscribing is not supported by this publisher")

// WatermillPublisher publishes events as JSON messages on one topic
type WatermillPublisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topic      string
	logger     *slog.Logger
}

// NewChannelPublisher publishes in-process through a watermill gochannel.
// Messages published while nobody subscribes are dropped.
func NewChannelPublisher(topic string, logger *slog.Logger) *WatermillPublisher {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewSlogLogger(logger))

	return &WatermillPublisher{
		publisher:  pubSub,
		subscriber: pubSub,
		topic:      topic,
		logger:     logger,
	}
}

// NewKafkaPublisher publishes to the given kafka brokers
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*WatermillPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

// NewPublisher builds the publisher selected by EVENTS_BACKEND
func NewPublisher(cfg config.EventsConfig, logger *slog.Logger) (EventPublisher, error) {
	switch cfg.Backend {
	case config.EventsBackendKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic, logger)
	case config.EventsBackendNone:
		return NoopPublisher{}, nil
	default:
		return NewChannelPublisher(cfg.Topic, logger), nil
	}
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(metadataEventType, string(event.Type))
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", p.topic)
	return nil
}

// Subscribe returns the stream of messages on the publisher's topic
func (p *WatermillPublisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if p.subscriber == nil {
		return nil, ErrSubscribeUnsupported
	}
	return p.subscriber.Subscribe(ctx, p.topic)
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

// LogEvents acks and logs every message until ctx is done or the stream closes
func LogEvents(ctx context.Context, messages <-chan *message.Message, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			logger.Info("Material event",
				"event_id", msg.UUID,
				"event_type", msg.Metadata.Get(metadataEventType))
			msg.Ack()
		}
	}
}

// NoopPublisher discards events
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error { return nil }
func (NoopPublisher) Close() error                          { return nil }
