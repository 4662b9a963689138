package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"GrainHero/pkg/mq"
	"GrainHero/pkg/zlog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	ClientID string
	// MaxAttempts bounds handler retries per message before it is skipped.
	MaxAttempts int
}

type saramaConsumer struct {
	cg          sarama.ConsumerGroup
	topics      []string
	maxAttempts int
}

func NewConsumer(cfg ConsumerConfig) (mq.Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers is empty")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return nil, errors.New("kafka consumer group id is empty")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("kafka topics is empty")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	sc := newConfig(cfg.ClientID)
	sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	sc.Consumer.Group.Rebalance.Timeout = 30 * time.Second
	sc.Consumer.Group.Session.Timeout = 30 * time.Second

	cg, err := sarama.NewConsumerGroup(cfg.Brokers, strings.TrimSpace(cfg.GroupID), sc)
	if err != nil {
		return nil, err
	}
	return &saramaConsumer{cg: cg, topics: cfg.Topics, maxAttempts: cfg.MaxAttempts}, nil
}

func (c *saramaConsumer) Run(ctx context.Context, handler mq.Handler) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	h := &consumerGroupHandler{h: handler, maxAttempts: c.maxAttempts}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.cg.Consume(ctx, c.topics, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
	}
}

func (c *saramaConsumer) Close() error {
	if c == nil {
		return nil
	}
	return c.cg.Close()
}

type consumerGroupHandler struct {
	h           mq.Handler
	maxAttempts int
}

func (consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for m := range claim.Messages() {
		msg := mq.Message{
			Topic: m.Topic,
			Key:   m.Key,
			Value: m.Value,
		}
		if len(m.Headers) > 0 {
			msg.Headers = make(map[string]string, len(m.Headers))
			for _, hdr := range m.Headers {
				if hdr == nil || len(hdr.Key) == 0 {
					continue
				}
				msg.Headers[string(hdr.Key)] = string(hdr.Value)
			}
		}

		if !h.handle(sess.Context(), msg) {
			return nil
		}
		sess.MarkMessage(m, "")
	}
	return nil
}

// handle retries transient failures with backoff. It returns false only when
// the session ends; exhausted messages are logged and committed so that one
// poisoned record cannot stall the partition.
func (h *consumerGroupHandler) handle(ctx context.Context, msg mq.Message) bool {
	wait := 200 * time.Millisecond
	for attempt := 1; ; attempt++ {
		err := h.h.Handle(ctx, msg)
		if err == nil {
			return true
		}
		if attempt >= h.maxAttempts {
			zlog.Error("kafka message dropped after retries",
				zap.String("topic", msg.Topic), zap.ByteString("key", msg.Key), zap.Error(err))
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		wait *= 2
	}
}
