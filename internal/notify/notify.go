package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Publisher emits entity lifecycle events for downstream consumers. Publishing
// is best effort: a failure is logged and never fails the user action. A
// publisher built without brokers is a no-op.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a kafka-backed publisher, or a disabled one when no
// brokers are configured.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends one keyed JSON message, e.g. key "order-created-42".
func (p *Publisher) Publish(ctx context.Context, action, id string, payload any) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msgf("Error encoding %s event", action)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s-%s", action, id)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event", action)
	}
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
