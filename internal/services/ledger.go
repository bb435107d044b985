package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
)

// withdrawScript debits ARGV[2] from field ARGV[1] only when the balance covers it.
var withdrawScript = redis.NewScript(`
	local balance = tonumber(redis.call("hget", KEYS[1], ARGV[1]) or "0")
	local amount = tonumber(ARGV[2])
	if balance < amount then
		return 0
	end
	redis.call("hincrbyfloat", KEYS[1], ARGV[1], -amount)
	return 1
`)

// Ledger is a virtual currency stored as one Redis hash of player balances
type Ledger struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewLedger creates a ledger stored under ledger:<name>
func NewLedger(client *redis.Client, name string, log *slog.Logger) *Ledger {
	return &Ledger{
		client: client,
		key:    "ledger:" + name,
		logger: logger.OrDiscard(log),
	}
}

// Balance returns the player's balance. Players without an entry have zero.
func (l *Ledger) Balance(ctx context.Context, playerID string) (float64, error) {
	val, err := l.client.HGet(ctx, l.key, playerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	balance, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance %q: %w", val, err)
	}
	return balance, nil
}

// Deposit adds amount to the player's balance
func (l *Ledger) Deposit(ctx context.Context, playerID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %v", amount)
	}
	if err := l.client.HIncrByFloat(ctx, l.key, playerID, amount).Err(); err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	l.logger.Debug("Ledger deposit", "ledger", l.key, "player", playerID, "amount", amount)
	return nil
}

// Withdraw atomically removes amount when the balance covers it and reports whether it did
func (l *Ledger) Withdraw(ctx context.Context, playerID string, amount float64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("withdraw amount must be positive, got %v", amount)
	}
	res, err := withdrawScript.Run(ctx, l.client, []string{l.key}, playerID, amount).Int()
	if err != nil {
		return false, fmt.Errorf("failed to withdraw: %w", err)
	}
	ok := res == 1
	l.logger.Debug("Ledger withdraw", "ledger", l.key, "player", playerID, "amount", amount, "ok", ok)
	return ok, nil
}
