package kafka

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"GrainHero/pkg/mq"

	"github.com/IBM/sarama"
)

type PublisherConfig struct {
	Brokers  []string
	ClientID string
}

type saramaPublisher struct {
	p sarama.SyncProducer
}

func NewPublisher(cfg PublisherConfig) (mq.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}

	sc := newConfig(cfg.ClientID)
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 10
	sc.Producer.Retry.Backoff = 100 * time.Millisecond
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	// records are keyed by tenant, see producerMessage
	sc.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, err
	}
	return &saramaPublisher{p: p}, nil
}

func (s *saramaPublisher) Publish(ctx context.Context, msg mq.Message) (mq.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return mq.PublishResult{}, err
	}
	m, err := producerMessage(msg, time.Now())
	if err != nil {
		return mq.PublishResult{}, err
	}
	partition, offset, err := s.p.SendMessage(m)
	if err != nil {
		return mq.PublishResult{}, err
	}
	return mq.PublishResult{Partition: partition, Offset: offset}, nil
}

// producerMessage maps msg onto a record. Messages without a key are keyed
// by their tenant header so the hash partitioner keeps a tenant on one
// partition. Headers are emitted in name order.
func producerMessage(msg mq.Message, now time.Time) (*sarama.ProducerMessage, error) {
	topic := strings.TrimSpace(msg.Topic)
	if topic == "" {
		return nil, errors.New("kafka topic is empty")
	}
	key := msg.Key
	if len(key) == 0 {
		key = []byte(msg.Headers[mq.HeaderTenantID])
	}
	if len(key) == 0 {
		return nil, errors.New("kafka message has neither key nor tenant")
	}

	m := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.ByteEncoder(key),
		Value:     sarama.ByteEncoder(msg.Value),
		Timestamp: now.UTC(),
	}
	names := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		if strings.TrimSpace(k) != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		m.Headers = append(m.Headers, sarama.RecordHeader{Key: []byte(strings.TrimSpace(k)), Value: []byte(msg.Headers[k])})
	}
	return m, nil
}

func (s *saramaPublisher) Close() error {
	if s == nil || s.p == nil {
		return nil
	}
	return s.p.Close()
}
