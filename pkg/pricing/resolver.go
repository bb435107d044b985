package pricing

import (
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/payment"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

// Resolver picks the tier a player pays for a vehicle type. It is immutable once built.
type Resolver struct {
	perms host.Permissions
	tiers map[vehicle.Type][]Tier
	free  map[vehicle.Type]Tier
}

// NewResolver compiles the tiers of every configured vehicle type.
func NewResolver(perms host.Permissions, configs map[vehicle.Type]vehicle.Config, providers *payment.Registry) *Resolver {
	r := &Resolver{
		perms: perms,
		tiers: make(map[vehicle.Type][]Tier, len(configs)),
		free:  make(map[vehicle.Type]Tier, len(configs)),
	}
	for t, cfg := range configs {
		r.tiers[t] = Compile(t, cfg, providers)
		r.free[t] = NewTier(t, vehicle.FreeTier, providers)
	}
	return r
}

// Tiers returns the compiled tiers of a type in declaration order.
func (r *Resolver) Tiers(t vehicle.Type) []Tier {
	return r.tiers[t]
}

// Resolve returns the tier the player pays for t. A false result means no override
// applies and the host's own price stands; it never means the vehicle is free.
func (r *Resolver) Resolve(t vehicle.Type, id host.PlayerID) (Tier, bool) {
	if r.hasFreePermission(t, id) {
		if free, ok := r.free[t]; ok {
			return free, true
		}
	}

	tiers := r.tiers[t]
	for i := len(tiers) - 1; i >= 0; i-- {
		tier := tiers[i]
		if tier.Valid && r.perms.HasPermission(id, tier.Permission) {
			return tier, true
		}
	}
	return Tier{}, false
}

func (r *Resolver) hasFreePermission(t vehicle.Type, id host.PlayerID) bool {
	return r.perms.HasPermission(id, vehicle.FreeAllPermission()) ||
		r.perms.HasPermission(id, vehicle.FreePermission(t))
}

// Permissions returns every tier permission the resolver can route to, free ones included.
func (r *Resolver) Permissions() []string {
	var out []string
	for _, info := range vehicle.All() {
		if _, ok := r.tiers[info.Type]; !ok {
			continue
		}
		out = append(out, vehicle.FreePermission(info.Type))
		for _, tier := range r.tiers[info.Type] {
			if tier.Permission != "" {
				out = append(out, tier.Permission)
			}
		}
	}
	return out
}
