package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/payment"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

type nopLedger struct{}

func (nopLedger) Call(method string, args ...any) any { return 0 }

func newTestResolver(t *testing.T, h *host.Memory, tiers ...vehicle.PriceTier) *Resolver {
	t.Helper()
	configs := map[vehicle.Type]vehicle.Config{
		vehicle.Minicopter: {FuelAmount: 100, PricesRequiringPermission: tiers},
		vehicle.Rowboat:    {FuelAmount: 50},
	}
	return NewResolver(h, configs, payment.NewRegistry(h, h, nil))
}

func TestResolve_FreePermissionWins(t *testing.T) {
	tiers := []vehicle.PriceTier{
		{Amount: 500, Currency: vehicle.CurrencyScrap},
		{Amount: 200, Currency: vehicle.CurrencyScrap},
	}

	for _, perm := range []string{vehicle.FreeAllPermission(), vehicle.FreePermission(vehicle.Minicopter)} {
		t.Run(perm, func(t *testing.T) {
			h := host.NewMemory(time.Unix(0, 0))
			r := newTestResolver(t, h, tiers...)
			h.Grant("p1", perm)
			h.Grant("p1", vehicle.TierPermission(vehicle.Minicopter, tiers[1]))

			tier, ok := r.Resolve(vehicle.Minicopter, "p1")
			require.True(t, ok)
			assert.True(t, tier.IsFree())
			assert.True(t, tier.Valid)
			assert.Equal(t, vehicle.CurrencyScrap, tier.Currency)
		})
	}
}

func TestResolve_FreeWithEmptyTierList(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	r := newTestResolver(t, h)
	h.Grant("p1", vehicle.FreeAllPermission())

	tier, ok := r.Resolve(vehicle.Rowboat, "p1")
	require.True(t, ok)
	assert.Equal(t, 0, tier.Amount)
}

func TestResolve_LastDeclaredPermittedTierWins(t *testing.T) {
	tiers := []vehicle.PriceTier{
		{Amount: 100, Currency: vehicle.CurrencyScrap},
		{Amount: 900, Currency: vehicle.CurrencyScrap},
		{Amount: 300, Currency: vehicle.CurrencyScrap},
	}

	tests := []struct {
		name    string
		granted []int
		want    int
		found   bool
	}{
		{"none", nil, 0, false},
		{"only first", []int{0}, 100, true},
		{"first and second picks second even though dearer", []int{0, 1}, 900, true},
		{"all picks last", []int{0, 1, 2}, 300, true},
		{"first and last picks last", []int{0, 2}, 300, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := host.NewMemory(time.Unix(0, 0))
			r := newTestResolver(t, h, tiers...)
			for _, i := range tt.granted {
				h.Grant("p1", vehicle.TierPermission(vehicle.Minicopter, tiers[i]))
			}

			tier, ok := r.Resolve(vehicle.Minicopter, "p1")
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, tier.Amount)
		})
	}
}

func TestResolve_SkipsInvalidTiers(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	tiers := []vehicle.PriceTier{
		{Amount: 100, Currency: vehicle.CurrencyScrap},
		{Amount: 20, Currency: vehicle.CurrencyEconomics}, // Economics not loaded
	}
	r := newTestResolver(t, h, tiers...)
	for _, tier := range tiers {
		h.Grant("p1", vehicle.TierPermission(vehicle.Minicopter, tier))
	}

	compiled := r.Tiers(vehicle.Minicopter)
	require.Len(t, compiled, 2)
	assert.True(t, compiled[0].Valid)
	assert.False(t, compiled[1].Valid)

	tier, ok := r.Resolve(vehicle.Minicopter, "p1")
	require.True(t, ok)
	assert.Equal(t, 100, tier.Amount)
}

func TestResolve_LedgerTierValidWhenLoaded(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	h.LoadPlugin("Economics", nopLedger{})
	price := vehicle.PriceTier{Amount: 20, Currency: vehicle.CurrencyEconomics}
	r := newTestResolver(t, h, price)
	h.Grant("p1", vehicle.TierPermission(vehicle.Minicopter, price))

	tier, ok := r.Resolve(vehicle.Minicopter, "p1")
	require.True(t, ok)
	assert.Equal(t, vehicle.CurrencyEconomics, tier.Currency)
	assert.Equal(t, "vehiclevendoroptions.price.minicopter.economics.20", tier.Permission)
}

func TestNewTier_EmptyCurrencyInvalid(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	tier := NewTier(vehicle.Minicopter, vehicle.PriceTier{Amount: 5}, payment.NewRegistry(h, h, nil))
	assert.False(t, tier.Valid)
	assert.Empty(t, tier.Permission)
}

func TestTier_IsHostPrice(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	reg := payment.NewRegistry(h, h, nil)

	assert.True(t, NewTier(vehicle.Rowboat, vehicle.PriceTier{Amount: 40, Currency: "scrap"}, reg).IsHostPrice(40))
	assert.False(t, NewTier(vehicle.Rowboat, vehicle.PriceTier{Amount: 20, Currency: "scrap"}, reg).IsHostPrice(40))
	assert.False(t, NewTier(vehicle.Rowboat, vehicle.PriceTier{Amount: 40, Currency: "economics"}, reg).IsHostPrice(40))
}

func TestResolver_Permissions(t *testing.T) {
	h := host.NewMemory(time.Unix(0, 0))
	r := newTestResolver(t, h, vehicle.PriceTier{Amount: 500, Currency: "scrap"})

	assert.Equal(t, []string{
		"vehiclevendoroptions.free.minicopter",
		"vehiclevendoroptions.price.minicopter.scrap.500",
		"vehiclevendoroptions.free.rowboat",
	}, r.Permissions())
}
