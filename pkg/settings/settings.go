// Package settings loads, migrates and holds the operator settings file.
package settings

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

// FileName is the default settings file name.
const FileName = "VehicleVendorOptions.json"

// Settings is the operator-facing configuration.
type Settings struct {
	Vehicles map[string]vehicle.Config `json:"Vehicles"`
}

// Defaults returns the compiled-in settings.
func Defaults() *Settings {
	fuel := map[vehicle.Type]int{
		vehicle.Minicopter:     100,
		vehicle.ScrapTransport: 100,
		vehicle.Rowboat:        50,
		vehicle.RHIB:           50,
		vehicle.SoloSub:        50,
		vehicle.DuoSub:         50,
	}

	s := &Settings{Vehicles: make(map[string]vehicle.Config)}
	for _, info := range vehicle.All() {
		s.Vehicles[info.SettingsKey] = vehicle.Config{
			FuelAmount:                fuel[info.Type],
			DespawnProtectionSeconds:  vehicle.HostDespawnProtection.Seconds(),
			RequiresPermission:        false,
			PricesRequiringPermission: []vehicle.PriceTier{},
		}
	}
	return s
}

// Configs returns the settings of every known vehicle type, keyed by type.
// Types missing from the file are absent from the result.
func (s *Settings) Configs() map[vehicle.Type]vehicle.Config {
	out := make(map[vehicle.Type]vehicle.Config)
	if s == nil {
		return out
	}
	for _, info := range vehicle.All() {
		if cfg, ok := s.Vehicles[info.SettingsKey]; ok {
			out[info.Type] = cfg
		}
	}
	return out
}

// Validate reports settings that load but cannot behave as the operator intends.
func (s *Settings) Validate() []error {
	var errs []error

	known := make(map[string]bool)
	for _, info := range vehicle.All() {
		known[info.SettingsKey] = true
	}

	keys := make([]string, 0, len(s.Vehicles))
	for k := range s.Vehicles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cfg := s.Vehicles[key]
		if !known[key] {
			errs = append(errs, fmt.Errorf("Vehicles.%s: unknown vehicle type", key))
			continue
		}
		if cfg.FuelAmount < -1 {
			errs = append(errs, fmt.Errorf("Vehicles.%s.FuelAmount: must be -1 or greater, got %d", key, cfg.FuelAmount))
		}
		for i, tier := range cfg.PricesRequiringPermission {
			if tier.Amount < 0 {
				errs = append(errs, fmt.Errorf("Vehicles.%s.PricesRequiringPermission[%d].Amount: must not be negative", key, i))
			}
			if tier.Amount > 0 && tier.Currency.Normalize() == "" {
				errs = append(errs, fmt.Errorf("Vehicles.%s.PricesRequiringPermission[%d].Currency: required", key, i))
			}
		}
	}
	return errs
}
