package main

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jwebster45206/vehicle-vendor/internal/sim"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

// Session is one player's seat at the simulated vendor. UI commands run off the
// bubbletea loop, so every method holds the session lock.
type Session struct {
	World        *sim.World
	Economy      *sim.Economy
	Plugin       *vendor.Plugin
	Player       host.PlayerID
	SettingsPath string
	Logger       *slog.Logger

	mu       sync.Mutex
	granted  []string
	messages int
}

// Turn is the visible result of one selected response.
type Turn struct {
	Choice   string
	Outcome  sim.Outcome
	Speech   string // text of the node the conversation moved to, if any
	Messages []string
}

// State is the side panel snapshot.
type State struct {
	Vendor        string
	Node          string
	Options       []sim.Option
	Scrap         int
	ShownScrap    int
	Economics     float64
	ServerRewards float64
	Granted       []string
	Spawned       []*host.MemoryVehicle
}

// Start opens the conversation and returns the vendor's greeting.
func (s *Session) Start() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drainMessages()
	return s.World.Start(s.Player).Text
}

func (s *Session) Choose(index int) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.World.Options(s.Player)
	if index < 0 || index >= len(opts) {
		return Turn{}, fmt.Errorf("%w: %d", sim.ErrBadResponse, index+1)
	}
	out, err := s.World.Choose(s.Player, index)
	if err != nil {
		return Turn{}, err
	}
	turn := Turn{Choice: opts[index].Response.Text, Outcome: out, Messages: s.drainMessages()}
	if speech, ok := s.World.Speech(s.Player); ok {
		turn.Speech = speech.Text
	}
	return turn, nil
}

// Advance moves the server clock so pending refreshes run.
func (s *Session) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.World.Advance(d)
}

func (s *Session) SetScrap(amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.World.SetItemAmount(s.Player, host.ScrapItem, amount)
}

func (s *Session) Fund(ctx context.Context, ledger string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Economy.Fund(ctx, ledger, s.Player, amount)
}

func (s *Session) Grant(perm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.World.Grant(s.Player, perm)
	if !slices.Contains(s.granted, perm) {
		s.granted = append(s.granted, perm)
		slices.Sort(s.granted)
	}
}

func (s *Session) Revoke(perm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.World.Revoke(s.Player, perm)
	s.granted = slices.DeleteFunc(s.granted, func(p string) bool { return p == perm })
}

// Reload rereads the settings file and swaps it into the running plugin.
func (s *Session) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Plugin.Reload(settings.Load(s.SettingsPath, s.Logger))
}

func (s *Session) Permissions() []string {
	return s.Plugin.Permissions()
}

func (s *Session) State(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Vendor:     string(s.World.VendorID()),
		Options:    s.World.Options(s.Player),
		Scrap:      s.World.ItemAmount(s.Player, host.ScrapItem),
		ShownScrap: s.World.DisplayedScrap(s.Player),
		Granted:    slices.Clone(s.granted),
		Spawned:    s.World.Spawned(),
	}
	if speech, ok := s.World.Speech(s.Player); ok {
		st.Node = speech.Name
	}

	var err error
	if st.Economics, err = s.Economy.Balance(ctx, "economics", s.Player); err != nil {
		return st, fmt.Errorf("failed to read economics balance: %w", err)
	}
	if st.ServerRewards, err = s.Economy.Balance(ctx, "serverrewards", s.Player); err != nil {
		return st, fmt.Errorf("failed to read reward points: %w", err)
	}
	return st, nil
}

// drainMessages returns chat messages sent to the player since the last call.
func (s *Session) drainMessages() []string {
	all := s.World.Messages
	var out []string
	for _, m := range all[s.messages:] {
		if m.Player == s.Player {
			out = append(out, m.Text)
		}
	}
	s.messages = len(all)
	return out
}
