package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

// PurchaseChannel is the Redis Pub/Sub channel purchase records are published on
const PurchaseChannel = "vehicle-vendor:purchases"

// DefaultBufferSize is how many records may wait for publishing before new ones are dropped
const DefaultBufferSize = 256

// Event is the published form of a purchase record
type Event struct {
	Type   string        `json:"type"`
	Record vendor.Record `json:"record"`
}

// Broadcaster publishes purchase records to Redis Pub/Sub.
// Record never blocks; Run drains the buffer and publishes.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	records     chan vendor.Record
}

// Ensure Broadcaster implements vendor.Observer
var _ vendor.Observer = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, log *slog.Logger, bufferSize int) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger.OrDiscard(log),
		records:     make(chan vendor.Record, bufferSize),
	}
}

// Record queues a record for publishing, dropping it if the buffer is full
func (b *Broadcaster) Record(r vendor.Record) {
	select {
	case b.records <- r:
	default:
		b.logger.Warn("Purchase event buffer full, dropping record",
			"kind", r.Kind,
			"player", r.Player,
			"purchase_id", r.PurchaseID.String())
	}
}

// Run publishes queued records until ctx is done
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-b.records:
			// Failures are logged in Publish
			_ = b.Publish(ctx, r)
		}
	}
}

// Publish sends one record immediately
func (b *Broadcaster) Publish(ctx context.Context, r vendor.Record) error {
	event := Event{
		Type:   "purchase." + string(r.Kind),
		Record: r,
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, PurchaseChannel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", PurchaseChannel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", PurchaseChannel,
		"event_type", event.Type,
		"purchase_id", r.PurchaseID.String(),
	)

	return nil
}
