// Package spawn adjusts vehicles right after a vendor spawns them.
package spawn

import (
	"log/slog"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

// Collaborators is the subset of the host the adjuster uses.
type Collaborators interface {
	host.Permissions
	host.Scheduler
	host.World
}

// Adjuster applies fuel, ownership and despawn protection settings to spawned vehicles.
type Adjuster struct {
	host    Collaborators
	configs map[vehicle.Type]vehicle.Config
	logger  *slog.Logger
}

func NewAdjuster(h Collaborators, configs map[vehicle.Type]vehicle.Config, log *slog.Logger) *Adjuster {
	return &Adjuster{host: h, configs: configs, logger: logger.OrDiscard(log)}
}

// OnSpawned schedules the adjustment for the next tick, after the host has initialized
// the entity. Spawns restored from a save are left alone.
func (a *Adjuster) OnSpawned(v host.Vehicle) {
	if a.host.IsLoadingSave() {
		return
	}
	a.host.NextTick(func() {
		a.adjust(v)
	})
}

func (a *Adjuster) adjust(v host.Vehicle) {
	if v.IsDestroyed() {
		return
	}
	creator, ok := v.Creator()
	if !ok {
		return
	}
	info, ok := vehicle.ForPrefab(v.PrefabName())
	if !ok {
		return
	}
	cfg, ok := a.configs[info.Type]
	if !ok {
		return
	}

	a.adjustFuel(v, cfg.FuelAmount)

	if a.host.HasPermission(creator, vehicle.OwnershipAllPermission()) ||
		a.host.HasPermission(creator, vehicle.OwnershipPermission(info.Type)) {
		v.SetOwner(creator)
	}

	if window, ok := cfg.DespawnProtection(); ok {
		// The host protects a vehicle for HostDespawnProtection after its spawn time,
		// so shifting the spawn time shifts the end of the window.
		v.SetSpawnTime(a.host.Now().Add(window - vehicle.HostDespawnProtection))
	}

	a.logger.Debug("Adjusted vendor vehicle",
		"vehicle", info.Type,
		"entity", v.ID(),
		"player", creator)
}

func (a *Adjuster) adjustFuel(v host.Vehicle, amount int) {
	fuel := v.FuelSystem()
	if fuel == nil {
		return
	}
	if amount < 0 {
		amount = fuel.Capacity()
	}
	if fuel.FuelAmount() != amount {
		fuel.SetFuelAmount(amount)
	}
}
