package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupLedger(t *testing.T, name string) (*miniredis.Miniredis, *Ledger) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewLedger(client, name, testLogger())
}

func TestLedger_BalanceDepositWithdraw(t *testing.T) {
	_, ledger := setupLedger(t, "economics")
	ctx := context.Background()

	balance, err := ledger.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, balance, "unknown player has nothing")

	require.NoError(t, ledger.Deposit(ctx, "p1", 50))
	balance, err = ledger.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance)

	ok, err := ledger.Withdraw(ctx, "p1", 20)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Withdraw(ctx, "p1", 31)
	require.NoError(t, err)
	assert.False(t, ok, "withdraw over balance is refused")

	balance, err = ledger.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, balance)
}

func TestLedger_RejectsNonPositive(t *testing.T) {
	_, ledger := setupLedger(t, "economics")
	ctx := context.Background()

	assert.Error(t, ledger.Deposit(ctx, "p1", 0))
	_, err := ledger.Withdraw(ctx, "p1", -5)
	assert.Error(t, err)
}

func TestLedger_CorruptBalance(t *testing.T) {
	mr, ledger := setupLedger(t, "economics")
	mr.HSet("ledger:economics", "p1", "lots")

	_, err := ledger.Balance(context.Background(), "p1")
	assert.Error(t, err)
}

func TestEconomyPlugin_Economics(t *testing.T) {
	_, ledger := setupLedger(t, "economics")
	p := NewEconomyPlugin(ledger, EconomicsMethods, testLogger())

	assert.Equal(t, true, p.Call("Deposit", "p1", 25.5))
	assert.Equal(t, 25.5, p.Call("Balance", "p1"))
	assert.Equal(t, true, p.Call("Withdraw", "p1", 20.0))
	assert.Equal(t, false, p.Call("Withdraw", "p1", 20.0))
	assert.Equal(t, 5.5, p.Call("Balance", "p1"))
}

func TestEconomyPlugin_ServerRewards(t *testing.T) {
	_, ledger := setupLedger(t, "serverrewards")
	p := NewEconomyPlugin(ledger, ServerRewardsMethods, testLogger())

	assert.Equal(t, true, p.Call("AddPoints", "p1", 15))
	assert.Equal(t, 15, p.Call("CheckPoints", "p1"))
	assert.Equal(t, false, p.Call("TakePoints", "p1", 20))
	assert.Equal(t, 15, p.Call("CheckPoints", "p1"))
}

func TestEconomyPlugin_BadCalls(t *testing.T) {
	_, ledger := setupLedger(t, "economics")
	p := NewEconomyPlugin(ledger, EconomicsMethods, testLogger())

	assert.Nil(t, p.Call("Balance"))
	assert.Nil(t, p.Call("Balance", 42))
	assert.Nil(t, p.Call("Transfer", "p1", "p2", 5.0))
	assert.Equal(t, false, p.Call("Withdraw", "p1"))
	assert.Equal(t, false, p.Call("Withdraw", "p1", "ten"))
}
