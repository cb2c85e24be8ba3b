package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RendaZhang/shopback-cashback-ledger/internal/app"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order-confirmed events to Kafka. Callers treat delivery as
// best effort; the ledger credit is already committed by the time an event is
// published.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Publisher) PublishOrderConfirmed(ctx context.Context, evt app.OrderConfirmedEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
