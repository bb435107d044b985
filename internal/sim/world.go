package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/pkg/conversation"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/vehicle"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

// Fuel a vendor vehicle is spawned with before any adjustment.
const (
	StartingFuel = 20
	FuelCapacity = 500
)

var (
	ErrNotTalking  = errors.New("player is not talking to the vendor")
	ErrBadResponse = errors.New("no such response")
)

// Option is a response as the player's client shows it.
type Option struct {
	Index     int
	Response  conversation.ResponseNode
	Available bool // the client evaluates conditions against the balance it was last sent
}

// Outcome is what happened when a player picked a response.
type Outcome struct {
	Response conversation.ResponseNode
	Decision vendor.Decision
	Node     string // node the conversation is now on; conversation.EndNode when it ended
	Rejected bool   // the server refused the response because its conditions failed
	Spawned  *host.MemoryVehicle
}

// Ended reports whether the conversation is over.
func (o Outcome) Ended() bool { return o.Node == conversation.EndNode }

// World is an in-memory server with one vendor. It wraps host.Memory so that forced
// transitions and client snapshots affect the running conversation.
type World struct {
	*host.Memory

	vendorID host.VendorID
	graph    *conversation.Graph
	logger   *slog.Logger
	plugin   *vendor.Plugin

	mu      sync.Mutex
	nodes   map[host.PlayerID]string
	display map[host.PlayerID]int
	spawned []*host.MemoryVehicle
}

// Ensure World implements host.Host
var _ host.Host = (*World)(nil)

func NewWorld(now time.Time, vendorID host.VendorID, graph *conversation.Graph, log *slog.Logger) *World {
	return &World{
		Memory:   host.NewMemory(now),
		vendorID: vendorID,
		graph:    graph,
		logger:   logger.OrDiscard(log),
		nodes:    make(map[host.PlayerID]string),
		display:  make(map[host.PlayerID]int),
	}
}

// Attach connects the plugin that receives this world's events.
func (w *World) Attach(p *vendor.Plugin) {
	w.plugin = p
}

func (w *World) Graph() *conversation.Graph { return w.graph }

func (w *World) VendorID() host.VendorID { return w.vendorID }

// Start opens the conversation at the graph's first speech node.
func (w *World) Start(id host.PlayerID) *conversation.SpeechNode {
	first := &w.graph.Speeches[0]
	w.mu.Lock()
	w.nodes[id] = first.Name
	w.mu.Unlock()
	return first
}

// Speech returns the node the player's conversation is on.
func (w *World) Speech(id host.PlayerID) (*conversation.SpeechNode, bool) {
	w.mu.Lock()
	name, ok := w.nodes[id]
	w.mu.Unlock()
	if !ok {
		return nil, false
	}
	return w.graph.Speech(name)
}

// DisplayedScrap is the scrap balance the player's client currently shows.
func (w *World) DisplayedScrap(id host.PlayerID) int {
	w.mu.Lock()
	shown, ok := w.display[id]
	w.mu.Unlock()
	if ok {
		return shown
	}
	return w.ItemAmount(id, host.ScrapItem)
}

// Options lists the current node's responses as the client renders them.
func (w *World) Options(id host.PlayerID) []Option {
	speech, ok := w.Speech(id)
	if !ok {
		return nil
	}
	shown := w.DisplayedScrap(id)
	opts := make([]Option, len(speech.Responses))
	for i, r := range speech.Responses {
		opts[i] = Option{Index: i, Response: r, Available: r.ConditionsPass(shown)}
	}
	return opts
}

// Choose runs one server frame for a selected response: the plugin sees the event,
// then the server validates it, runs its action and moves the conversation on.
func (w *World) Choose(id host.PlayerID, index int) (Outcome, error) {
	speech, ok := w.Speech(id)
	if !ok {
		return Outcome{}, ErrNotTalking
	}
	if index < 0 || index >= len(speech.Responses) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrBadResponse, index)
	}
	resp := speech.Responses[index]
	out := Outcome{Response: resp}

	if w.plugin != nil {
		out.Decision = w.plugin.OnResponse(conversation.Event{
			Vendor:   w.vendorID,
			Player:   id,
			Graph:    w.graph,
			Response: resp,
		})
	}
	if out.Decision == vendor.Suppress {
		out.Node = w.node(id)
		w.Tick()
		return out, nil
	}

	if !resp.ConditionsPass(w.ItemAmount(id, host.ScrapItem)) {
		w.logger.Debug("Response conditions failed", "player", id, "response", resp.Text)
		out.Rejected = true
		out.Node = w.node(id)
		w.Tick()
		return out, nil
	}

	if resp.Action != "" {
		out.Spawned = w.runAction(id, resp)
	}
	w.setNode(id, resp.Target)
	out.Node = resp.Target
	w.Tick()
	return out, nil
}

func (w *World) runAction(id host.PlayerID, resp conversation.ResponseNode) *host.MemoryVehicle {
	var info vehicle.Info
	found := false
	for _, candidate := range vehicle.All() {
		if candidate.BuyAction == resp.Action {
			info, found = candidate, true
			break
		}
	}
	if !found {
		w.logger.Warn("Unknown vendor action", "action", resp.Action)
		return nil
	}

	if price, ok := resp.ScrapThreshold(); ok {
		w.TakeItem(id, host.ScrapItem, price)
	}

	v := host.NewMemoryVehicle(uuid.NewString(), info.Prefabs[0], id, host.NewMemoryFuel(StartingFuel, FuelCapacity), w.Now())
	w.mu.Lock()
	w.spawned = append(w.spawned, v)
	w.mu.Unlock()
	w.logger.Info("Vehicle spawned", "player", id, "vehicle", info.Type, "entity", v.ID())

	if w.plugin != nil {
		w.plugin.OnSpawned(v)
	}
	return v
}

// Spawned returns every vehicle spawned so far.
func (w *World) Spawned() []*host.MemoryVehicle {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*host.MemoryVehicle, len(w.spawned))
	copy(out, w.spawned)
	return out
}

func (w *World) node(id host.PlayerID) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if name, ok := w.nodes[id]; ok {
		return name
	}
	return conversation.EndNode
}

func (w *World) setNode(id host.PlayerID, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if name == conversation.EndNode {
		delete(w.nodes, id)
		return
	}
	w.nodes[id] = name
}

// ForceNode records the transition and moves the conversation.
func (w *World) ForceNode(vendorID host.VendorID, id host.PlayerID, node string) {
	w.Memory.ForceNode(vendorID, id, node)
	w.setNode(id, node)
}

// SendDisplaySnapshot records the snapshot and shows it on the client.
func (w *World) SendDisplaySnapshot(id host.PlayerID, item string, amount int) {
	w.Memory.SendDisplaySnapshot(id, item, amount)
	if item != host.ScrapItem {
		return
	}
	w.mu.Lock()
	w.display[id] = amount
	w.mu.Unlock()
}

// Resync records the resync and restores the client's true balance.
func (w *World) Resync(id host.PlayerID) {
	w.Memory.Resync(id)
	w.mu.Lock()
	delete(w.display, id)
	w.mu.Unlock()
}
