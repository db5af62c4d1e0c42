// Package publisher ships audit entries to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	domain "github.com/GopalDev98/creditcard-backend/internal/domain/audit"
)

var _ domain.Publisher = (*KafkaPublisher)(nil)

const DefaultTopic = "creditcard.audit"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// MaxAttempts <= 0 keeps the writer default.
	MaxAttempts int
}

// KafkaPublisher writes one JSON message per audit entry, keyed by application id so
// the entries of one application stay ordered within a partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxAttempts,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	return newKafkaPublisher(w, cfg.Topic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, l *domain.Log) error {
	value, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("kafka: marshal audit %s: %w", l.EventID, err)
	}
	msg := kafka.Message{
		Key:   []byte(l.ApplicationID),
		Value: value,
		Time:  l.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(l.EventID)},
			{Key: "action", Value: []byte(l.Action)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
