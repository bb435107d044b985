// Package payment implements the balance/debit capability behind each price tier currency.
package payment

import (
	"log/slog"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

// Provider queries and debits a balance in one currency.
// Debit never refuses loudly: callers must check Balance first, and a debit larger
// than the balance is dropped.
type Provider interface {
	Available() bool
	Balance(id host.PlayerID) int
	Debit(id host.PlayerID, amount int)
}

// CanAfford reports whether the provider is usable and the player holds at least amount.
func CanAfford(p Provider, id host.PlayerID, amount int) bool {
	if p == nil || !p.Available() {
		return false
	}
	if amount <= 0 {
		return true
	}
	return p.Balance(id) >= amount
}

// Registry hands out one provider per currency selector.
type Registry struct {
	inv       host.Inventory
	plugins   host.Plugins
	logger    *slog.Logger
	providers map[vehicle.Currency]Provider
}

// NewRegistry creates a registry. Ledger availability is captured the first time a
// ledger currency is requested, so build the registry once the server has started.
func NewRegistry(inv host.Inventory, plugins host.Plugins, log *slog.Logger) *Registry {
	return &Registry{
		inv:       inv,
		plugins:   plugins,
		logger:    logger.OrDiscard(log),
		providers: make(map[vehicle.Currency]Provider),
	}
}

// For returns the provider for a currency, or nil for an empty selector.
func (r *Registry) For(currency vehicle.Currency) Provider {
	currency = currency.Normalize()
	if currency == "" {
		return nil
	}
	if p, ok := r.providers[currency]; ok {
		return p
	}

	var p Provider
	switch currency {
	case vehicle.CurrencyEconomics:
		p = NewLedgerProvider(Economics, r.plugins, r.logger)
	case vehicle.CurrencyServerRewards:
		p = NewLedgerProvider(ServerRewards, r.plugins, r.logger)
	default:
		p = NewItemProvider(string(currency), r.inv)
	}
	r.providers[currency] = p
	return p
}
