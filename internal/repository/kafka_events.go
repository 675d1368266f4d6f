package repository

import (
	"context"

	"CPIReg/internal/domain/models"
	drepo "CPIReg/internal/domain/repository"
	pkgkafka "CPIReg/pkg/kafka"
)

// KafkaPublisher publishes run events keyed by run id.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

var _ drepo.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishRun(ctx context.Context, ev *models.RunEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.RunID), ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
