package host

import (
	"slices"
	"sync"
	"time"
)

// Plugin is a named server plugin reachable through Memory.Call.
type Plugin interface {
	Call(method string, args ...any) any
}

// SnapshotCall records a display-only inventory push.
type SnapshotCall struct {
	Player PlayerID
	Item   string
	Amount int
}

// MessageCall records a chat message sent to a player.
type MessageCall struct {
	Player PlayerID
	Text   string
}

// ForceCall records a forced dialogue transition.
type ForceCall struct {
	Vendor VendorID
	Player PlayerID
	Node   string
}

type timer struct {
	at  time.Time
	seq int
	fn  func()
}

// Memory is an in-memory Host used by tests and the simulator.
// Callbacks scheduled through NextTick and After only run when Tick or Advance is called.
type Memory struct {
	mu          sync.RWMutex
	now         time.Time
	loadingSave bool
	connected   map[PlayerID]bool
	languages   map[PlayerID]string
	inventories map[PlayerID]map[string]int
	granted     map[PlayerID]map[string]bool
	plugins     map[string]Plugin
	nextTick    []func()
	timers      []timer
	timerSeq    int

	// Call tracking
	Registered []string
	Snapshots  []SnapshotCall
	Resyncs    []PlayerID
	Messages   []MessageCall
	Forced     []ForceCall
}

// Ensure Memory implements Host
var _ Host = (*Memory)(nil)

// NewMemory creates an empty in-memory host whose clock starts at now.
func NewMemory(now time.Time) *Memory {
	return &Memory{
		now:         now,
		connected:   make(map[PlayerID]bool),
		languages:   make(map[PlayerID]string),
		inventories: make(map[PlayerID]map[string]int),
		granted:     make(map[PlayerID]map[string]bool),
		plugins:     make(map[string]Plugin),
	}
}

// Connect marks a player as online.
func (m *Memory) Connect(id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected[id] = true
}

// Disconnect marks a player as offline. Their inventory is kept.
func (m *Memory) Disconnect(id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connected, id)
}

// SetLanguage sets the language reported for a player.
func (m *Memory) SetLanguage(id PlayerID, lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.languages[id] = lang
}

// SetLoadingSave toggles the world loading flag.
func (m *Memory) SetLoadingSave(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadingSave = loading
}

// Grant gives a player a permission.
func (m *Memory) Grant(id PlayerID, perm string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.granted[id] == nil {
		m.granted[id] = make(map[string]bool)
	}
	m.granted[id][perm] = true
}

// Revoke removes a permission from a player.
func (m *Memory) Revoke(id PlayerID, perm string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.granted[id], perm)
}

// SetItemAmount overwrites a player's stack count for an item.
func (m *Memory) SetItemAmount(id PlayerID, item string, amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory(id)[item] = amount
}

// LoadPlugin makes a plugin reachable by name.
func (m *Memory) LoadPlugin(name string, p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plugins[name] = p
}

// UnloadPlugin removes a plugin.
func (m *Memory) UnloadPlugin(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plugins, name)
}

func (m *Memory) inventory(id PlayerID) map[string]int {
	inv, ok := m.inventories[id]
	if !ok {
		inv = make(map[string]int)
		m.inventories[id] = inv
	}
	return inv
}

// Permissions

func (m *Memory) HasPermission(id PlayerID, perm string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.granted[id][perm]
}

func (m *Memory) RegisterPermission(perm string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.Registered, perm) {
		m.Registered = append(m.Registered, perm)
	}
}

// Inventory

func (m *Memory) ItemAmount(id PlayerID, item string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inventories[id][item]
}

func (m *Memory) GiveItem(id PlayerID, item string, amount int) {
	if amount <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory(id)[item] += amount
}

func (m *Memory) TakeItem(id PlayerID, item string, amount int) int {
	if amount <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.inventory(id)
	taken := min(amount, inv[item])
	inv[item] -= taken
	return taken
}

// ClientSync

func (m *Memory) SendDisplaySnapshot(id PlayerID, item string, amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, SnapshotCall{Player: id, Item: item, Amount: amount})
}

func (m *Memory) Resync(id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resyncs = append(m.Resyncs, id)
}

// Players

func (m *Memory) IsConnected(id PlayerID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected[id]
}

func (m *Memory) Language(id PlayerID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if lang, ok := m.languages[id]; ok {
		return lang
	}
	return "en"
}

// Messenger

func (m *Memory) ChatMessage(id PlayerID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, MessageCall{Player: id, Text: text})
}

// Dialogue

func (m *Memory) ForceNode(vendor VendorID, id PlayerID, node string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forced = append(m.Forced, ForceCall{Vendor: vendor, Player: id, Node: node})
}

// Plugins

func (m *Memory) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.plugins[name]
	return ok
}

func (m *Memory) Call(name, method string, args ...any) any {
	m.mu.RLock()
	p, ok := m.plugins[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return p.Call(method, args...)
}

// Scheduler

func (m *Memory) NextTick(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTick = append(m.nextTick, fn)
}

func (m *Memory) After(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timerSeq++
	m.timers = append(m.timers, timer{at: m.now.Add(d), seq: m.timerSeq, fn: fn})
}

// Tick runs the callbacks queued with NextTick before this call.
// Callbacks queued while ticking run on the following Tick.
func (m *Memory) Tick() {
	m.mu.Lock()
	pending := m.nextTick
	m.nextTick = nil
	m.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Advance moves the clock forward and runs every timer that became due, in order.
func (m *Memory) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	var due []timer
	remaining := m.timers[:0]
	for _, t := range m.timers {
		if !t.at.After(now) {
			due = append(due, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	m.timers = remaining
	m.mu.Unlock()

	slices.SortFunc(due, func(a, b timer) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.seq - b.seq
	})
	for _, t := range due {
		t.fn()
	}
}

// PendingTimers returns how many After callbacks have not run yet.
func (m *Memory) PendingTimers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timers)
}

// World

func (m *Memory) IsLoadingSave() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loadingSave
}

func (m *Memory) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Reset clears all call tracking
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = nil
	m.Resyncs = nil
	m.Messages = nil
	m.Forced = nil
}
