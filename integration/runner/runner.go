package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/sim"
	"github.com/jwebster45206/vehicle-vendor/pkg/conversation"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
	"github.com/jwebster45206/vehicle-vendor/pkg/vendor"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Epoch is the simulated server clock at the start of every suite.
var Epoch = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// Runner executes vendor scenarios against a simulated server backed by Redis ledgers
type Runner struct {
	Redis             *redis.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	GraphOverride     string // If set, overrides the graph for all test cases
}

// NewRunner creates a new test runner
func NewRunner(client *redis.Client) *Runner {
	return &Runner{
		Redis:             client,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// table is one suite's running world.
type table struct {
	world    *sim.World
	economy  *sim.Economy
	plugin   *vendor.Plugin
	observer *vendor.MemoryObserver
	player   host.PlayerID

	// Per-step bookkeeping
	messages int
	records  int
	last     *sim.Outcome
}

// RunSuite executes a complete test suite
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	graphName := suite.Graph
	if r.GraphOverride != "" {
		graphName = r.GraphOverride
	}
	graph, err := sim.LoadGraph(graphName)
	if err != nil {
		result.Error = fmt.Errorf("failed to load graph: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	tbl, err := r.seed(ctx, graph, suite.Seed)
	if err != nil {
		result.Error = fmt.Errorf("failed to seed world: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Player = string(tbl.player)

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)

		if step.Reset {
			if tbl, err = r.seed(ctx, graph, suite.Seed); err != nil {
				result.Error = fmt.Errorf("failed to reset world: %w", err)
				break
			}
			result.Player = string(tbl.player)
		}

		stepResult := r.runStep(ctx, tbl, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// seed builds a fresh world for a new player, so runs never share ledger balances.
func (r *Runner) seed(ctx context.Context, graph *conversation.Graph, seed Seed) (*table, error) {
	s := settings.Defaults()
	for key, raw := range seed.Vehicles {
		cfg, ok := s.Vehicles[key]
		if !ok {
			return nil, fmt.Errorf("unknown vehicle settings key %q", key)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s settings: %w", key, err)
		}
		s.Vehicles[key] = cfg
	}

	tbl := &table{
		world:    sim.NewWorld(Epoch, host.VendorID(graph.ShortName), graph, nil),
		observer: &vendor.MemoryObserver{},
		player:   host.PlayerID("itest-" + uuid.NewString()),
	}
	tbl.economy = sim.LoadEconomy(tbl.world, r.Redis, nil)
	for _, name := range seed.Unloaded {
		tbl.world.UnloadPlugin(name)
	}

	tbl.world.Connect(tbl.player)
	if seed.Language != "" {
		tbl.world.SetLanguage(tbl.player, seed.Language)
	}
	tbl.world.SetItemAmount(tbl.player, host.ScrapItem, seed.Scrap)
	for item, amount := range seed.Items {
		tbl.world.SetItemAmount(tbl.player, item, amount)
	}
	for _, perm := range seed.Permissions {
		tbl.world.Grant(tbl.player, perm)
	}
	if seed.Economics > 0 {
		if err := tbl.economy.Fund(ctx, "economics", tbl.player, seed.Economics); err != nil {
			return nil, err
		}
	}
	if seed.ServerRewards > 0 {
		if err := tbl.economy.Fund(ctx, "serverrewards", tbl.player, seed.ServerRewards); err != nil {
			return nil, err
		}
	}

	tbl.plugin = sim.Boot(tbl.world, settings.NewStore(s), tbl.observer, nil)
	return tbl, nil
}

// runStep applies one step to the world and checks its expectations
func (r *Runner) runStep(ctx context.Context, tbl *table, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
		IsReset:  step.Reset,
	}
	tbl.last = nil

	for _, perm := range step.Grant {
		tbl.world.Grant(tbl.player, perm)
	}
	for _, perm := range step.Revoke {
		tbl.world.Revoke(tbl.player, perm)
	}
	if step.Disconnect {
		tbl.world.Disconnect(tbl.player)
	}
	if step.Start {
		tbl.world.Start(tbl.player)
	}
	if step.Choose != nil {
		out, err := tbl.world.Choose(tbl.player, *step.Choose-1)
		if err != nil {
			result.Error = fmt.Errorf("failed to choose response %d: %w", *step.Choose, err)
			result.Duration = time.Since(start)
			return result
		}
		tbl.last = &out
	}
	if step.AdvanceSeconds > 0 {
		tbl.world.Advance(time.Duration(step.AdvanceSeconds * float64(time.Second)))
	}

	result.Messages = tbl.newMessages()
	records := tbl.newRecords()

	if err := r.checkExpectations(ctx, tbl, step.Expectations, result.Messages, records); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (t *table) newMessages() []string {
	all := t.world.Messages
	var out []string
	for _, m := range all[t.messages:] {
		if m.Player == t.player {
			out = append(out, m.Text)
		}
	}
	t.messages = len(all)
	return out
}

func (t *table) newRecords() []string {
	kinds := t.observer.Kinds()
	out := make([]string, 0, len(kinds)-t.records)
	for _, k := range kinds[t.records:] {
		out = append(out, string(k))
	}
	t.records = len(kinds)
	return out
}

// checkExpectations validates the test expectations against the world after a step
func (r *Runner) checkExpectations(ctx context.Context, tbl *table, exp Expectations, messages, records []string) error {
	if exp.Node != nil {
		node := conversation.EndNode
		if speech, ok := tbl.world.Speech(tbl.player); ok {
			node = speech.Name
		}
		if node != *exp.Node {
			return fmt.Errorf("expected node %s, got %s", *exp.Node, node)
		}
	}

	if exp.Ended != nil || exp.Suppressed != nil || exp.Rejected != nil {
		if tbl.last == nil {
			return fmt.Errorf("outcome expectations need a choose step")
		}
		if exp.Ended != nil && tbl.last.Ended() != *exp.Ended {
			return fmt.Errorf("expected ended to be %t, got %t", *exp.Ended, tbl.last.Ended())
		}
		if exp.Suppressed != nil && (tbl.last.Decision == vendor.Suppress) != *exp.Suppressed {
			return fmt.Errorf("expected suppressed to be %t, got decision %s", *exp.Suppressed, tbl.last.Decision)
		}
		if exp.Rejected != nil && tbl.last.Rejected != *exp.Rejected {
			return fmt.Errorf("expected rejected to be %t, got %t", *exp.Rejected, tbl.last.Rejected)
		}
	}

	if exp.Available != nil {
		opts := tbl.world.Options(tbl.player)
		if len(opts) != len(exp.Available) {
			return fmt.Errorf("expected %d responses, got %d", len(exp.Available), len(opts))
		}
		for i, opt := range opts {
			if opt.Available != exp.Available[i] {
				return fmt.Errorf("expected response %d available to be %t, got %t", i+1, exp.Available[i], opt.Available)
			}
		}
	}

	if exp.Scrap != nil {
		if got := tbl.world.ItemAmount(tbl.player, host.ScrapItem); got != *exp.Scrap {
			return fmt.Errorf("expected scrap %d, got %d", *exp.Scrap, got)
		}
	}
	if exp.ShownScrap != nil {
		if got := tbl.world.DisplayedScrap(tbl.player); got != *exp.ShownScrap {
			return fmt.Errorf("expected client to show %d scrap, got %d", *exp.ShownScrap, got)
		}
	}
	for item, want := range exp.Items {
		if got := tbl.world.ItemAmount(tbl.player, item); got != want {
			return fmt.Errorf("expected %d %s, got %d", want, item, got)
		}
	}
	if err := checkLedger(ctx, tbl, "economics", exp.Economics); err != nil {
		return err
	}
	if err := checkLedger(ctx, tbl, "serverrewards", exp.ServerRewards); err != nil {
		return err
	}

	if err := checkVehicles(tbl, exp); err != nil {
		return err
	}

	if exp.NoMessages && len(messages) > 0 {
		return fmt.Errorf("expected no messages, got %q", messages)
	}
	joined := strings.ToLower(strings.Join(messages, "\n"))
	for _, want := range exp.MessagesContain {
		if !strings.Contains(joined, strings.ToLower(want)) {
			return fmt.Errorf("expected messages to contain '%s', got %q", want, messages)
		}
	}

	if exp.Records != nil && strings.Join(exp.Records, ",") != strings.Join(records, ",") {
		return fmt.Errorf("expected records %v, got %v", exp.Records, records)
	}

	return nil
}

func checkLedger(ctx context.Context, tbl *table, ledger string, want *float64) error {
	if want == nil {
		return nil
	}
	got, err := tbl.economy.Balance(ctx, ledger, tbl.player)
	if err != nil {
		return fmt.Errorf("failed to read %s balance: %w", ledger, err)
	}
	if math.Abs(got-*want) > 1e-9 {
		return fmt.Errorf("expected %s balance %v, got %v", ledger, *want, got)
	}
	return nil
}

func checkVehicles(tbl *table, exp Expectations) error {
	spawned := tbl.world.Spawned()
	if exp.Spawned != nil && len(spawned) != *exp.Spawned {
		return fmt.Errorf("expected %d spawned vehicles, got %d", *exp.Spawned, len(spawned))
	}
	if exp.Fuel == nil && exp.Owned == nil && exp.SpawnAgeSecs == nil {
		return nil
	}
	if len(spawned) == 0 {
		return fmt.Errorf("expected a spawned vehicle, got none")
	}
	v := spawned[len(spawned)-1]

	if exp.Fuel != nil {
		fuel := v.Fuel()
		if fuel == nil {
			return fmt.Errorf("expected fuel %d, vehicle has no fuel system", *exp.Fuel)
		}
		if fuel.FuelAmount() != *exp.Fuel {
			return fmt.Errorf("expected fuel %d, got %d", *exp.Fuel, fuel.FuelAmount())
		}
	}
	if exp.Owned != nil && (v.Owner() == tbl.player) != *exp.Owned {
		return fmt.Errorf("expected owned to be %t, owner is %q", *exp.Owned, v.Owner())
	}
	if exp.SpawnAgeSecs != nil {
		age := tbl.world.Now().Sub(v.SpawnTime()).Seconds()
		if math.Abs(age-*exp.SpawnAgeSecs) > 1e-6 {
			return fmt.Errorf("expected spawn age %vs, got %vs", *exp.SpawnAgeSecs, age)
		}
	}
	return nil
}
