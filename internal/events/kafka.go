package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tapnews/internal/model"

	"github.com/segmentio/kafka-go"
)

// Kafka appends every favorite change to an audit topic keyed by owner, so one
// owner's events stay ordered within a partition.
type Kafka struct {
	writer *kafka.Writer
}

// WriteMessages blocks until its batch is flushed.
const batchTimeout = 10 * time.Millisecond

func NewKafka(broker, topic string) *Kafka {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
	}
	return &Kafka{writer: writer}
}

func (k *Kafka) Publish(ctx context.Context, event model.FavoriteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal favorite event: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OwnerID),
		Value: data,
		Time:  event.At,
	})
	if err != nil {
		return fmt.Errorf("write favorite event to kafka: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
