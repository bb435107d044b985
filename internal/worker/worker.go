// Package worker keeps a durable audit trail of the purchase records published by
// running vendor plugins.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/internal/services/events"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

const (
	// HistoryLimit is how many records are kept per player
	HistoryLimit = 100
	claimTTL     = 10 * time.Minute
	retryDelay   = time.Second
)

// Worker subscribes to purchase events and stores them in Redis. Several workers may
// run at once; each event is stored by whichever claims it first.
type Worker struct {
	id          string
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		redisClient: redisClient,
		log:         logger.OrDiscard(log),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start consumes events until Stop is called. Lost subscriptions are re-established.
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id, "channel", events.PurchaseChannel)

	for {
		if err := w.consume(); err != nil {
			w.log.Error("Subscription failed", "error", err, "worker_id", w.id)
		}
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-time.After(retryDelay):
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

func (w *Worker) consume() error {
	sub := w.redisClient.Subscribe(w.ctx, events.PurchaseChannel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(w.ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-w.ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription closed")
			}
			if err := w.Process(w.ctx, []byte(msg.Payload)); err != nil {
				w.log.Error("Error processing event", "error", err, "worker_id", w.id)
			}
		}
	}
}

// Process stores one published event.
func (w *Worker) Process(ctx context.Context, payload []byte) error {
	var ev events.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	r := ev.Record
	if r.Player == "" || r.Kind == "" {
		return fmt.Errorf("event %q has no player or kind", ev.Type)
	}

	key := claimKey(r)
	claimed, err := w.redisClient.SetNX(ctx, key, w.id, claimTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to claim event: %w", err)
	}
	if !claimed {
		w.log.Debug("Event already stored by another worker", "worker_id", w.id, "event_type", ev.Type)
		return nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := w.redisClient.TxPipeline()
	pipe.LPush(ctx, historyKey(r.Player), data)
	pipe.LTrim(ctx, historyKey(r.Player), 0, HistoryLimit-1)
	pipe.HIncrBy(ctx, statsKey(r.Vehicle), string(r.Kind), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the claim so a redelivery can store the record.
		if delErr := w.redisClient.Del(ctx, key).Err(); delErr != nil {
			w.log.Error("Failed to release event claim", "error", delErr, "worker_id", w.id, "key", key)
		}
		return fmt.Errorf("failed to store record: %w", err)
	}

	w.log.Info("Purchase event stored",
		"worker_id", w.id,
		"event_type", ev.Type,
		"player", r.Player,
		"vehicle", r.Vehicle,
		"purchase_id", r.PurchaseID.String())
	return nil
}

// claimKey marks an event as handled. Records without a purchase ID are identified by
// their content.
func claimKey(r vendor.Record) string {
	id := r.PurchaseID.String()
	if r.PurchaseID == uuid.Nil {
		id = fmt.Sprintf("%s:%s:%d", r.Player, r.Vehicle, r.At.UnixNano())
	}
	return fmt.Sprintf("purchase-claim:%s:%s", r.Kind, id)
}

// History returns a player's most recent records, newest first.
func History(ctx context.Context, client *redis.Client, player host.PlayerID) ([]vendor.Record, error) {
	items, err := client.LRange(ctx, historyKey(player), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase history: %w", err)
	}
	out := make([]vendor.Record, 0, len(items))
	for _, item := range items {
		var r vendor.Record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("failed to decode purchase history: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Stats counts stored records per kind for a vehicle type.
func Stats(ctx context.Context, client *redis.Client, t vehicle.Type) (map[vendor.RecordKind]int64, error) {
	raw, err := client.HGetAll(ctx, statsKey(t)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase stats: %w", err)
	}
	out := make(map[vendor.RecordKind]int64, len(raw))
	for kind, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s count: %w", kind, err)
		}
		out[vendor.RecordKind(kind)] = n
	}
	return out, nil
}

func historyKey(player host.PlayerID) string {
	return "purchases:" + string(player)
}

func statsKey(t vehicle.Type) string {
	return "purchase-stats:" + string(t)
}
