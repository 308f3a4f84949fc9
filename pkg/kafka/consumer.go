// Package kafka wraps segmentio/kafka-go for the two topics the platform
// uses: search analytics events and inventory change notices. Values travel
// as JSON.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/resilience"
)

// MessageHandler processes one message. A returned error is retried per the
// consumer's handler policy; a handler that wants a message dropped returns
// nil.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ConsumerStats counts messages since the consumer started.
type ConsumerStats struct {
	Processed int64 `json:"processed"`
	Dropped   int64 `json:"dropped"`
}

// Consumer reads one topic and dispatches each message to a MessageHandler,
// committing the offset once the handler is done with it.
type Consumer struct {
	reader  reader
	handler MessageHandler
	retry   resilience.Policy
	logger  *slog.Logger

	processed atomic.Int64
	dropped   atomic.Int64
}

type consumerSettings struct {
	reader kafka.ReaderConfig
	retry  resilience.Policy
}

// ConsumerOption adjusts a consumer before it is built.
type ConsumerOption func(*consumerSettings)

// WithGroupSuffix gives the consumer its own group so every replica sees
// every message. Inventory change notices are consumed this way.
func WithGroupSuffix(suffix string) ConsumerOption {
	return func(s *consumerSettings) {
		s.reader.GroupID = s.reader.GroupID + "-" + suffix
	}
}

// FromFirstOffset makes a new group start at the beginning of the topic.
func FromFirstOffset() ConsumerOption {
	return func(s *consumerSettings) {
		s.reader.StartOffset = kafka.FirstOffset
	}
}

// WithHandlerRetry sets how often a failing message is retried before it is
// committed and counted as dropped.
func WithHandlerRetry(p resilience.Policy) ConsumerOption {
	return func(s *consumerSettings) {
		s.retry = p
	}
}

// NewConsumer creates a Consumer for topic. Failing messages get three
// attempts by default.
func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler, opts ...ConsumerOption) *Consumer {
	s := consumerSettings{
		reader: kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1e3,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		},
		retry: resilience.Policy{Attempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(&s)
	}
	c := newConsumer(kafka.NewReader(s.reader), handler, s.retry)
	c.logger = c.logger.With("topic", topic, "group", s.reader.GroupID)
	return c
}

func newConsumer(r reader, handler MessageHandler, retry resilience.Policy) *Consumer {
	return &Consumer{
		reader:  r,
		handler: handler,
		retry:   retry,
		logger:  slog.Default().With("component", "kafka-consumer"),
	}
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("failed to fetch message", "error", err)
			continue
		}
		c.process(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("message received",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", string(msg.Key),
		"value_size", len(msg.Value),
	)
	err := c.retry.Do(ctx, "kafka-handler", func(ctx context.Context) error {
		return c.handler(ctx, msg.Key, msg.Value)
	})
	if err != nil {
		c.dropped.Add(1)
		c.logger.Error("dropping message after handler failures",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}
	c.processed.Add(1)
}

// Stats returns message counts so far.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{Processed: c.processed.Load(), Dropped: c.dropped.Load()}
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
