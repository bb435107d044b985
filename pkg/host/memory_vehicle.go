package host

import (
	"sync"
	"time"
)

// MemoryFuel is an in-memory FuelSystem.
type MemoryFuel struct {
	mu       sync.Mutex
	amount   int
	capacity int
}

var _ FuelSystem = (*MemoryFuel)(nil)

func NewMemoryFuel(amount, capacity int) *MemoryFuel {
	return &MemoryFuel{amount: amount, capacity: capacity}
}

func (f *MemoryFuel) FuelAmount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

func (f *MemoryFuel) Capacity() int {
	return f.capacity
}

func (f *MemoryFuel) SetFuelAmount(amount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amount = amount
}

// MemoryVehicle is an in-memory Vehicle used by tests and the simulator.
type MemoryVehicle struct {
	mu        sync.Mutex
	id        string
	prefab    string
	creator   PlayerID
	destroyed bool
	fuel      *MemoryFuel
	owner     PlayerID
	spawnTime time.Time
}

var _ Vehicle = (*MemoryVehicle)(nil)

// NewMemoryVehicle creates a vehicle spawned by creator at spawnTime. An empty creator
// means the vehicle was spawned by the world. fuel may be nil.
func NewMemoryVehicle(id, prefab string, creator PlayerID, fuel *MemoryFuel, spawnTime time.Time) *MemoryVehicle {
	return &MemoryVehicle{id: id, prefab: prefab, creator: creator, fuel: fuel, spawnTime: spawnTime}
}

func (v *MemoryVehicle) ID() string         { return v.id }
func (v *MemoryVehicle) PrefabName() string { return v.prefab }

func (v *MemoryVehicle) Creator() (PlayerID, bool) {
	return v.creator, v.creator != ""
}

func (v *MemoryVehicle) IsDestroyed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.destroyed
}

// Destroy marks the vehicle as killed.
func (v *MemoryVehicle) Destroy() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.destroyed = true
}

func (v *MemoryVehicle) FuelSystem() FuelSystem {
	if v.fuel == nil {
		return nil
	}
	return v.fuel
}

// Fuel returns the concrete fuel system, or nil.
func (v *MemoryVehicle) Fuel() *MemoryFuel {
	return v.fuel
}

func (v *MemoryVehicle) SetOwner(id PlayerID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.owner = id
}

// Owner returns the assigned owner, or "" if none.
func (v *MemoryVehicle) Owner() PlayerID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.owner
}

func (v *MemoryVehicle) SetSpawnTime(t time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spawnTime = t
}

// SpawnTime returns the spawn timestamp the despawn timer counts from.
func (v *MemoryVehicle) SpawnTime() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spawnTime
}
