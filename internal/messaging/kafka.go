package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/pkg/utils"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// envelope matches the event_type/data shape consumers expect on every topic.
type envelope struct {
	EventType string `json:"event_type"`
	Data      any    `json:"data"`
}

// KafkaPublisher publishes domain events with a synchronous producer.
type KafkaPublisher struct {
	producer      sarama.SyncProducer
	statusTopic   string
	dispatchTopic string
	log           *zap.Logger
}

// NewKafkaProducer connects a sync producer, retrying while the brokers come up.
func NewKafkaProducer(cfg utils.KafkaConfig, log *zap.Logger) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var err error
	for i := 1; i <= 5; i++ {
		var producer sarama.SyncProducer
		producer, err = sarama.NewSyncProducer(cfg.Brokers, config)
		if err == nil {
			log.Info("Kafka producer connected", zap.Strings("brokers", cfg.Brokers))
			return producer, nil
		}

		log.Warn("Failed to connect to Kafka",
			zap.Error(err),
			zap.Int("attempt", i),
			zap.Int("max_attempts", 5))
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("connect kafka after 5 attempts: %w", err)
}

func NewKafkaPublisher(producer sarama.SyncProducer, cfg utils.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer:      producer,
		statusTopic:   cfg.OrderEventsTopic,
		dispatchTopic: cfg.DispatchTopic,
		log:           log.With(zap.String("component", "kafka-publisher")),
	}
}

func (p *KafkaPublisher) PublishOrderStatus(ctx context.Context, event *entity.OrderStatusChanged) error {
	return p.publish(p.statusTopic, event.OrderID.String(), "order_status_changed", event)
}

func (p *KafkaPublisher) PublishDispatch(ctx context.Context, event *entity.DroneDispatch) error {
	return p.publish(p.dispatchTopic, event.DroneID.String(), "drone_dispatch_requested", event)
}

// publish keys messages so that events for one order or drone stay ordered.
func (p *KafkaPublisher) publish(topic, key, eventType string, data any) error {
	payload, err := json.Marshal(envelope{EventType: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", eventType, topic, err)
	}

	p.log.Debug("Event published",
		zap.String("topic", topic),
		zap.String("event_type", eventType),
		zap.String("key", key),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct {
	log *zap.Logger
}

func NewNoopPublisher(log *zap.Logger) *NoopPublisher {
	return &NoopPublisher{log: log.With(zap.String("component", "noop-publisher"))}
}

func (p *NoopPublisher) PublishOrderStatus(_ context.Context, event *entity.OrderStatusChanged) error {
	p.log.Debug("Order status event not published, kafka disabled",
		zap.String("order_id", event.OrderID.String()),
		zap.String("status", string(event.To)))
	return nil
}

func (p *NoopPublisher) PublishDispatch(_ context.Context, event *entity.DroneDispatch) error {
	p.log.Debug("Dispatch request not published, kafka disabled",
		zap.String("order_id", event.OrderID.String()))
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
