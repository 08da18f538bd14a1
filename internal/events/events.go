// Package events publishes order lifecycle events to kafka. Publishing is
// fire-and-forget: a broker outage is logged and never surfaces to the
// order path.
package events

import (
	"context"
	"encoding/json"
	"time"

	"dokan-be/internal/logger"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

type OrderCreated struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, evt OrderCreated)
	Close()
}

type kafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{client: client, topic: topic}, nil
}

func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, evt OrderCreated) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.L().Error("marshal order event", zap.Error(err))
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(evt.OrderID),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("order_created")},
		},
		Timestamp: time.Now(),
	}

	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			logger.L().Warn("order event publish failed",
				zap.String("order_id", evt.OrderID),
				zap.Error(err),
			)
			return
		}
		logger.L().Debug("order event published",
			zap.String("order_id", evt.OrderID),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset),
		)
	})
}

func (p *kafkaPublisher) Close() {
	p.client.Close()
}

// NopPublisher drops events; used when kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(ctx context.Context, evt OrderCreated) {}
func (NopPublisher) Close()                                                    {}
