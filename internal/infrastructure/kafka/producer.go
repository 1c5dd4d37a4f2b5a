package kafka

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher delivers an outcome payload to a named topic. At-least-once
// semantics; no ordering guarantee relative to other topics.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewPublisher(brokers []string, l *zap.Logger) Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
		Logger:   zap.NewStdLog(l.With(zap.String("kafka_component", "publisher"))),
	}

	l.Info("Kafka publisher initialized", zap.Strings("brokers", brokers))
	return &kafkaPublisher{writer: writer, logger: l}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message to Kafka topic",
			zap.String("topic", topic),
			zap.Error(err))
		return fmt.Errorf("failed to publish message on %s: %w", topic, err)
	}
	p.logger.Debug("Published message to topic", zap.String("topic", topic))
	return nil
}

func (p *kafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka publisher", zap.Error(err))
		return fmt.Errorf("failed to close Kafka publisher: %w", err)
	}
	p.logger.Info("Kafka publisher closed.")
	return nil
}
