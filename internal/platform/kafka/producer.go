// Package kafka relays outbox entries to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "obligo/pkg/platform/audit"
)

const (
	HeaderEventType = "event_type"
	HeaderOutboxID  = "outbox_id"
)

// Producer publishes outbox entries synchronously, keyed by aggregate so all
// events of one batch land on the same partition.
type Producer struct {
	client *kgo.Client
	topic  string
}

func NewProducer(brokers []string, topic string, opts ...kgo.Opt) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Publish produces every entry and returns once all are acknowledged.
func (p *Producer) Publish(ctx context.Context, entries []audit.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := p.client.ProduceSync(ctx, Records(entries)...).FirstErr(); err != nil {
		return fmt.Errorf("produce outbox entries: %w", err)
	}
	return nil
}

func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Producer) Close() {
	p.client.Close()
}

// Records maps outbox entries to Kafka records.
func Records(entries []audit.OutboxEntry) []*kgo.Record {
	records := make([]*kgo.Record, len(entries))
	for i, e := range entries {
		records[i] = &kgo.Record{
			Key:       []byte(e.AggregateID),
			Value:     e.Payload,
			Timestamp: e.CreatedAt,
			Headers: []kgo.RecordHeader{
				{Key: HeaderEventType, Value: []byte(e.EventType)},
				{Key: HeaderOutboxID, Value: []byte(e.ID)},
			},
		}
	}
	return records
}
