package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vehicle-vendor/internal/services/events"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

var at = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func payload(t *testing.T, r vendor.Record) []byte {
	t.Helper()
	data, err := json.Marshal(events.Event{Type: "purchase." + string(r.Kind), Record: r})
	require.NoError(t, err)
	return data
}

func committed(player host.PlayerID) vendor.Record {
	return vendor.Record{
		Kind:       vendor.RecordCommitted,
		PurchaseID: uuid.New(),
		Player:     player,
		Vendor:     "boatvendor",
		Vehicle:    vehicle.Rowboat,
		Amount:     20,
		Currency:   vehicle.CurrencyEconomics,
		HostPrice:  40,
		At:         at,
	}
}

func TestWorker_Process(t *testing.T) {
	client := setupRedis(t)
	w := New(client, nil, "test-worker")
	ctx := context.Background()

	first := committed("p1")
	denied := vendor.Record{Kind: vendor.RecordDenied, PurchaseID: uuid.New(), Player: "p1", Vehicle: vehicle.Rowboat, At: at.Add(time.Second)}
	require.NoError(t, w.Process(ctx, payload(t, first)))
	require.NoError(t, w.Process(ctx, payload(t, denied)))

	history, err := History(ctx, client, "p1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, vendor.RecordDenied, history[0].Kind, "newest first")
	assert.Equal(t, first.PurchaseID, history[1].PurchaseID)
	assert.Equal(t, 20, history[1].Amount)

	stats, err := Stats(ctx, client, vehicle.Rowboat)
	require.NoError(t, err)
	assert.Equal(t, map[vendor.RecordKind]int64{vendor.RecordCommitted: 1, vendor.RecordDenied: 1}, stats)
}

func TestWorker_FailedWriteReleasesClaim(t *testing.T) {
	client := setupRedis(t)
	w := New(client, nil, "test-worker")
	ctx := context.Background()
	data := payload(t, committed("p1"))

	// A history key of the wrong type makes the write fail.
	require.NoError(t, client.Set(ctx, historyKey("p1"), "corrupt", 0).Err())
	err := w.Process(ctx, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store record")

	require.NoError(t, client.Del(ctx, historyKey("p1")).Err())
	require.NoError(t, New(client, nil, "other-worker").Process(ctx, data))

	history, err := History(ctx, client, "p1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestWorker_ProcessIsIdempotentAcrossWorkers(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	data := payload(t, committed("p1"))
	blocked := payload(t, vendor.Record{Kind: vendor.RecordBlocked, Player: "p1", Vehicle: vehicle.Minicopter, At: at})

	a := New(client, nil, "a")
	b := New(client, nil, "")
	require.NoError(t, a.Process(ctx, data))
	require.NoError(t, b.Process(ctx, data))
	require.NoError(t, a.Process(ctx, blocked))
	require.NoError(t, b.Process(ctx, blocked))

	history, err := History(ctx, client, "p1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestWorker_ProcessRejectsBadPayloads(t *testing.T) {
	w := New(setupRedis(t), nil, "")
	ctx := context.Background()

	assert.ErrorContains(t, w.Process(ctx, []byte("{")), "failed to decode event")
	assert.ErrorContains(t, w.Process(ctx, []byte(`{"type":"purchase.committed","record":{}}`)), "no player or kind")
}

func TestWorker_HistoryIsCapped(t *testing.T) {
	client := setupRedis(t)
	w := New(client, nil, "")
	ctx := context.Background()

	for i := 0; i < HistoryLimit+5; i++ {
		require.NoError(t, w.Process(ctx, payload(t, committed("p1"))))
	}
	history, err := History(ctx, client, "p1")
	require.NoError(t, err)
	assert.Len(t, history, HistoryLimit)
}

func TestWorker_StartStoresPublishedRecords(t *testing.T) {
	client := setupRedis(t)
	w := New(client, nil, "")

	done := make(chan error, 1)
	go func() { done <- w.Start() }()
	defer func() {
		w.Stop()
		assert.NoError(t, <-done)
	}()

	// Wait for the subscription before publishing.
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(context.Background(), events.PurchaseChannel).Result()
		return err == nil && n[events.PurchaseChannel] == 1
	}, time.Second, 10*time.Millisecond)

	b := events.NewBroadcaster(client, nil, 1)
	require.NoError(t, b.Publish(context.Background(), committed("p2")))

	assert.Eventually(t, func() bool {
		history, err := History(context.Background(), client, "p2")
		return err == nil && len(history) == 1
	}, time.Second, 10*time.Millisecond)
}
