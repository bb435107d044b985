package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/services"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/payment"
	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

// Economy holds the Redis ledgers behind the simulated economy plugins.
type Economy struct {
	Economics     *services.Ledger
	ServerRewards *services.Ledger
}

// LoadEconomy registers Economics and ServerRewards plugins backed by Redis.
// Call it before booting the vendor plugin; ledgers loaded afterwards are not seen
// until the next reload.
func LoadEconomy(w *World, client *redis.Client, log *slog.Logger) *Economy {
	e := &Economy{
		Economics:     services.NewLedger(client, "economics", log),
		ServerRewards: services.NewLedger(client, "serverrewards", log),
	}
	w.LoadPlugin(payment.Economics.Plugin, services.NewEconomyPlugin(e.Economics, services.EconomicsMethods, log))
	w.LoadPlugin(payment.ServerRewards.Plugin, services.NewEconomyPlugin(e.ServerRewards, services.ServerRewardsMethods, log))
	return e
}

// Fund deposits amount into a player's ledger balance.
func (e *Economy) Fund(ctx context.Context, ledger string, id host.PlayerID, amount float64) error {
	l, err := e.ledger(ledger)
	if err != nil {
		return err
	}
	return l.Deposit(ctx, string(id), amount)
}

// Balance reads a player's ledger balance.
func (e *Economy) Balance(ctx context.Context, ledger string, id host.PlayerID) (float64, error) {
	l, err := e.ledger(ledger)
	if err != nil {
		return 0, err
	}
	return l.Balance(ctx, string(id))
}

func (e *Economy) ledger(name string) (*services.Ledger, error) {
	switch name {
	case "economics":
		return e.Economics, nil
	case "serverrewards":
		return e.ServerRewards, nil
	}
	return nil, fmt.Errorf("unknown ledger %q", name)
}

// Boot creates the vendor plugin for the world, attaches it and initializes it.
func Boot(w *World, store *settings.Store, observer vendor.Observer, log *slog.Logger) *vendor.Plugin {
	p := vendor.New(w, store, log).WithObserver(observer)
	w.Attach(p)
	p.Init()
	return p
}
