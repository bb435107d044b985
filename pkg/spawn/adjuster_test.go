package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func prefab(t vehicle.Type) string {
	info, _ := vehicle.Lookup(t)
	return info.Prefabs[0]
}

func newAdjuster(h *host.Memory) *Adjuster {
	return NewAdjuster(h, map[vehicle.Type]vehicle.Config{
		vehicle.Minicopter: {FuelAmount: 100, DespawnProtectionSeconds: 600},
		vehicle.Rowboat:    {FuelAmount: -1, DespawnProtectionSeconds: -1},
		vehicle.RHIB:       {FuelAmount: 50, DespawnProtectionSeconds: 60},
	}, nil)
}

func TestOnSpawned_AdjustsOnNextTick(t *testing.T) {
	h := host.NewMemory(epoch)
	a := newAdjuster(h)
	v := host.NewMemoryVehicle("v1", prefab(vehicle.Minicopter), "p1", host.NewMemoryFuel(0, 500), epoch)

	a.OnSpawned(v)
	assert.Equal(t, 0, v.Fuel().FuelAmount(), "nothing happens before the tick")

	h.Tick()
	assert.Equal(t, 100, v.Fuel().FuelAmount())
	assert.Equal(t, epoch.Add(300*time.Second), v.SpawnTime(), "600s window ends 300s after the host default")
	assert.Empty(t, v.Owner(), "no ownership permission")
}

func TestOnSpawned_Fuel(t *testing.T) {
	tests := []struct {
		name string
		typ  vehicle.Type
		fuel *host.MemoryFuel
		want int
	}{
		{"fixed amount", vehicle.RHIB, host.NewMemoryFuel(0, 500), 50},
		{"negative fills to capacity", vehicle.Rowboat, host.NewMemoryFuel(10, 500), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := host.NewMemory(epoch)
			v := host.NewMemoryVehicle("v1", prefab(tt.typ), "p1", tt.fuel, epoch)
			newAdjuster(h).OnSpawned(v)
			h.Tick()
			assert.Equal(t, tt.want, tt.fuel.FuelAmount())
		})
	}

	t.Run("no fuel system", func(t *testing.T) {
		h := host.NewMemory(epoch)
		v := host.NewMemoryVehicle("v1", prefab(vehicle.RHIB), "p1", nil, epoch)
		newAdjuster(h).OnSpawned(v)
		assert.NotPanics(t, h.Tick)
	})
}

func TestOnSpawned_DespawnProtection(t *testing.T) {
	h := host.NewMemory(epoch)
	h.Advance(time.Minute)
	a := newAdjuster(h)

	rhib := host.NewMemoryVehicle("v1", prefab(vehicle.RHIB), "p1", nil, epoch)
	rowboat := host.NewMemoryVehicle("v2", prefab(vehicle.Rowboat), "p1", nil, epoch)
	a.OnSpawned(rhib)
	a.OnSpawned(rowboat)
	h.Tick()

	assert.Equal(t, epoch.Add(time.Minute).Add(-240*time.Second), rhib.SpawnTime())
	assert.Equal(t, epoch, rowboat.SpawnTime(), "negative window keeps the host default")
}

func TestOnSpawned_Ownership(t *testing.T) {
	tests := []struct {
		name  string
		perm  string
		owned bool
	}{
		{"all vehicles", vehicle.OwnershipAllPermission(), true},
		{"matching type", vehicle.OwnershipPermission(vehicle.Minicopter), true},
		{"other type", vehicle.OwnershipPermission(vehicle.RHIB), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := host.NewMemory(epoch)
			h.Grant("p1", tt.perm)
			v := host.NewMemoryVehicle("v1", prefab(vehicle.Minicopter), "p1", nil, epoch)
			newAdjuster(h).OnSpawned(v)
			h.Tick()

			if tt.owned {
				assert.Equal(t, host.PlayerID("p1"), v.Owner())
			} else {
				assert.Empty(t, v.Owner())
			}
		})
	}
}

func TestOnSpawned_Skips(t *testing.T) {
	t.Run("loading save", func(t *testing.T) {
		h := host.NewMemory(epoch)
		h.SetLoadingSave(true)
		v := host.NewMemoryVehicle("v1", prefab(vehicle.Minicopter), "p1", host.NewMemoryFuel(0, 500), epoch)
		newAdjuster(h).OnSpawned(v)
		h.Tick()
		assert.Equal(t, 0, v.Fuel().FuelAmount())
	})

	t.Run("destroyed before tick", func(t *testing.T) {
		h := host.NewMemory(epoch)
		v := host.NewMemoryVehicle("v1", prefab(vehicle.Minicopter), "p1", host.NewMemoryFuel(0, 500), epoch)
		newAdjuster(h).OnSpawned(v)
		v.Destroy()
		h.Tick()
		assert.Equal(t, 0, v.Fuel().FuelAmount())
	})

	t.Run("world spawn", func(t *testing.T) {
		h := host.NewMemory(epoch)
		v := host.NewMemoryVehicle("v1", prefab(vehicle.Minicopter), "", host.NewMemoryFuel(0, 500), epoch)
		newAdjuster(h).OnSpawned(v)
		h.Tick()
		assert.Equal(t, 0, v.Fuel().FuelAmount())
	})

	t.Run("unconfigured type", func(t *testing.T) {
		h := host.NewMemory(epoch)
		v := host.NewMemoryVehicle("v1", prefab(vehicle.DuoSub), "p1", host.NewMemoryFuel(0, 500), epoch)
		newAdjuster(h).OnSpawned(v)
		h.Tick()
		assert.Equal(t, 0, v.Fuel().FuelAmount())
	})
}
