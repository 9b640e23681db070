package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
)

// Producer publishes outbox events with an idempotent synchronous sarama producer.
type Producer struct {
	sync sarama.SyncProducer
}

// NewConfig returns the producer settings the relay relies on: all replicas
// acknowledge and retried sends are deduplicated by the broker.
func NewConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	if clientID != "" {
		cfg.ClientID = clientID
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// NewProducer connects to brokers, retrying while the cluster comes up.
func NewProducer(ctx context.Context, brokers []string, cfg *sarama.Config, logger *slog.Logger) (*Producer, error) {
	if cfg == nil {
		cfg = NewConfig("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute

	var sync sarama.SyncProducer
	err := backoff.RetryNotify(
		func() error {
			var err error
			sync, err = sarama.NewSyncProducer(brokers, cfg)
			return err
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.WarnContext(ctx, "kafka connect failed, retrying", "brokers", brokers, "error", err, "next_attempt_in", next)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new producer: %w", err)
	}
	return &Producer{sync: sync}, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.sync.SendMessage(newMessage(topic, key, payload, headers))
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

func newMessage(topic, key string, payload []byte, headers map[string]string) *sarama.ProducerMessage {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	hs := make([]sarama.RecordHeader, 0, len(keys))
	for _, k := range keys {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	return &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
}
