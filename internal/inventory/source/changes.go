package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/kafka"
)

// Change types carried on the inventory-changes topic.
const (
	ChangeUpsert = "upsert"
	ChangeDelete = "delete"
	ChangeReload = "reload"
)

// ChangeEvent announces that the item store changed. Any event triggers a
// full reload; the item id is informational.
type ChangeEvent struct {
	Type      string    `json:"type"`
	ItemID    string    `json:"item_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChangeConsumer reloads the catalog whenever the item store announces a
// change on Kafka.
type ChangeConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewChangeConsumer wraps an already configured Kafka consumer, normally
// built with HandleChanges as its handler.
func NewChangeConsumer(kafkaConsumer *kafka.Consumer) *ChangeConsumer {
	return &ChangeConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "change-consumer"),
	}
}

// Start consumes until ctx is cancelled.
func (cc *ChangeConsumer) Start(ctx context.Context) error {
	cc.logger.Info("change consumer starting")
	return cc.consumer.Start(ctx)
}

// HandleChanges returns a handler that reloads catalog for every change
// event. Undecodable messages are logged and skipped; a failed reload is
// returned so the consumer retries it.
func HandleChanges(catalog *Catalog) kafka.MessageHandler {
	logger := slog.Default().With("component", "change-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChangeEvent](value)
		if err != nil {
			logger.Error("failed to decode change event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		switch event.Type {
		case ChangeUpsert, ChangeDelete, ChangeReload:
		default:
			logger.Warn("ignoring unknown change type", "type", event.Type, "item_id", event.ItemID)
			return nil
		}
		logger.Debug("processing change event", "type", event.Type, "item_id", event.ItemID)
		snap, err := catalog.Reload(ctx)
		if err != nil {
			return fmt.Errorf("reloading after %s of %q: %w", event.Type, event.ItemID, err)
		}
		logger.Info("catalog refreshed from change event",
			"type", event.Type,
			"item_id", event.ItemID,
			"version", snap.Version,
		)
		return nil
	}
}

// PublishChange announces a change so every search replica reloads.
func PublishChange(ctx context.Context, producer *kafka.Producer, event ChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return producer.Publish(ctx, kafka.Event{
		Key:     event.ItemID,
		Value:   event,
		Headers: map[string]string{"change_type": event.Type},
	})
}
