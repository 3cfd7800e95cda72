package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/viralforge/mesh/services/integrations/M74-integration-health-service/internal/domain"
)

// KafkaPublisher emits health-transition events keyed by integration name so
// per-integration ordering survives partitioning.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) PublishHealthChange(ctx context.Context, evt domain.HealthChangeEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode health change event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.Integration),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("integration.health.changed")},
			{Key: "event_id", Value: []byte(evt.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish health change for %s: %w", evt.Integration, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
