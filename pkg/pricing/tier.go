// Package pricing derives runtime price tiers from settings and resolves the tier a player pays.
package pricing

import (
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/payment"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

// Tier is a configured price tier with the fields derived at load time.
type Tier struct {
	vehicle.PriceTier
	Vehicle    vehicle.Type
	Permission string
	Provider   payment.Provider
	Valid      bool
}

// NewTier derives permission, provider and validity for a configured tier.
func NewTier(t vehicle.Type, price vehicle.PriceTier, providers *payment.Registry) Tier {
	price.Currency = price.Currency.Normalize()
	tier := Tier{
		PriceTier:  price,
		Vehicle:    t,
		Permission: vehicle.TierPermission(t, price),
	}
	if price.IsFree() {
		// Nothing is charged; the host currency provider stands in for affordability checks.
		tier.Currency = vehicle.CurrencyScrap
	}
	if providers != nil {
		tier.Provider = providers.For(tier.Currency)
	}
	tier.Valid = tier.Provider != nil && tier.Provider.Available() && tier.Permission != "" && price.Amount >= 0
	return tier
}

// CanAfford reports whether the player can pay this tier through its own provider.
func (t Tier) CanAfford(id host.PlayerID) bool {
	return payment.CanAfford(t.Provider, id, t.Amount)
}

// Charge debits the tier's amount through its provider.
func (t Tier) Charge(id host.PlayerID) {
	if t.Provider == nil || t.Amount <= 0 {
		return
	}
	t.Provider.Debit(id, t.Amount)
}

// IsHostPrice reports whether the tier is exactly the host's own price.
func (t Tier) IsHostPrice(amount int) bool {
	return t.Currency == vehicle.CurrencyScrap && t.Amount == amount
}

// Compile derives the tiers for one vehicle type, preserving declaration order.
func Compile(t vehicle.Type, cfg vehicle.Config, providers *payment.Registry) []Tier {
	tiers := make([]Tier, 0, len(cfg.PricesRequiringPermission))
	for _, price := range cfg.PricesRequiringPermission {
		tiers = append(tiers, NewTier(t, price, providers))
	}
	return tiers
}
