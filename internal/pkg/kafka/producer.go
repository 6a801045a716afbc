package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/config"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/log_messages"
	"github.com/KelluuhShit/loan-mpesa/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	deliveryTimeout = 10 * time.Second
	flushTimeoutMs  = 5000
)

// ProducerInterface defines the interface for Kafka producer operations.
type ProducerInterface interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// KafkaProducerInterface publishes keyed JSON events.
type KafkaProducerInterface interface {
	PublishJSON(ctx context.Context, key string, payload any) error
}

type KafkaProducer struct {
	producer ProducerInterface
	topic    string
}

func NewKafkaProducer(cfg config.KafkaConfig) (*KafkaProducer, error) {
	kafkaConfig := &kafka.ConfigMap{
		"bootstrap.servers": cfg.Server,
		"client.id":         cfg.ClientID,
		"acks":              "all",
	}
	if cfg.SecurityProtocol != "" {
		_ = kafkaConfig.SetKey("security.protocol", cfg.SecurityProtocol)
		_ = kafkaConfig.SetKey("sasl.mechanisms", cfg.SASLMechanism)
		_ = kafkaConfig.SetKey("sasl.username", cfg.SASLUsername)
		_ = kafkaConfig.SetKey("sasl.password", cfg.SASLPassword)
	}

	producer, err := kafka.NewProducer(kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info(log_messages.KafkaProducerCreated, slog.String("topic", cfg.PaymentEventTopic))

	return NewKafkaProducerWithInterface(producer, cfg.PaymentEventTopic), nil
}

func NewKafkaProducerWithInterface(producer ProducerInterface, topic string) *KafkaProducer {
	return &KafkaProducer{producer: producer, topic: topic}
}

// PublishJSON marshals payload and waits for the delivery report.
func (kp *KafkaProducer) PublishJSON(ctx context.Context, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal kafka payload: %w", err)
	}
	return kp.publish(ctx, []byte(key), value)
}

func (kp *KafkaProducer) publish(ctx context.Context, key, value []byte) error {
	deliveryChan := make(chan kafka.Event, 1)

	err := kp.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &kp.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}, deliveryChan)
	if err != nil {
		logger.CtxError(ctx, "Failed to produce Kafka message", err)
		return err
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(deliveryTimeout):
		return fmt.Errorf("timeout waiting for Kafka delivery report")
	}

	return nil
}

// Close flushes and closes the Kafka producer.
func (kp *KafkaProducer) Close() error {
	kp.producer.Flush(flushTimeoutMs)
	kp.producer.Close()
	return nil
}
