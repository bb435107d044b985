// Package host describes the game server collaborators the vendor plugin talks to.
// Nothing in this package owns game state; implementations live in the server
// adapter (or in Memory for tests and simulation).
package host

import "time"

// PlayerID identifies a player across the permission, inventory and economy services.
type PlayerID string

// VendorID identifies the NPC vendor a conversation is held with.
type VendorID string

// ScrapItem is the item short name the host's vendor conditions are hardcoded against.
const ScrapItem = "scrap"

// Permissions is the permission service.
type Permissions interface {
	HasPermission(id PlayerID, perm string) bool
	RegisterPermission(perm string)
}

// Inventory reads and writes item counts in a player's main inventory.
type Inventory interface {
	ItemAmount(id PlayerID, item string) int
	GiveItem(id PlayerID, item string, amount int)
	// TakeItem removes up to amount and returns how many were removed.
	TakeItem(id PlayerID, item string, amount int) int
}

// ClientSync controls what the player's client believes its inventory holds.
type ClientSync interface {
	// SendDisplaySnapshot pushes a one-shot inventory view to the client only.
	SendDisplaySnapshot(id PlayerID, item string, amount int)
	// Resync sends the authoritative inventory to the client.
	Resync(id PlayerID)
}

// Players exposes connection state.
type Players interface {
	IsConnected(id PlayerID) bool
	Language(id PlayerID) string
}

// Messenger delivers chat text to a player.
type Messenger interface {
	ChatMessage(id PlayerID, text string)
}

// Dialogue is the command side of the host conversation engine.
type Dialogue interface {
	ForceNode(vendor VendorID, id PlayerID, node string)
}

// Plugins reaches other server plugins by name.
type Plugins interface {
	IsLoaded(name string) bool
	Call(name, method string, args ...any) any
}

// Scheduler re-enters plugin code on the host's main loop.
type Scheduler interface {
	NextTick(fn func())
	After(d time.Duration, fn func())
}

// World exposes global server state.
type World interface {
	IsLoadingSave() bool
	Now() time.Time
}

// Host aggregates every collaborator the plugin needs.
type Host interface {
	Permissions
	Inventory
	ClientSync
	Players
	Messenger
	Dialogue
	Plugins
	Scheduler
	World
}

// FuelSystem is the fuel container of a spawned vehicle.
type FuelSystem interface {
	FuelAmount() int
	Capacity() int
	SetFuelAmount(amount int)
}

// Vehicle is a freshly spawned vehicle entity.
type Vehicle interface {
	ID() string
	PrefabName() string
	// Creator returns the player that caused the spawn, if any.
	Creator() (PlayerID, bool)
	IsDestroyed() bool
	// FuelSystem returns nil for vehicles without fuel.
	FuelSystem() FuelSystem
	SetOwner(id PlayerID)
	SetSpawnTime(t time.Time)
}
