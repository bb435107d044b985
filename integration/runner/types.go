package runner

import (
	"encoding/json"
	"time"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Graph string     `json:"graph,omitempty"` // bundled vendor graph; used for regular tests
	Seed  Seed       `json:"seed,omitempty"`  // used for regular tests
	Steps []TestStep `json:"steps,omitempty"` // used for regular tests
	Cases []string   `json:"cases,omitempty"` // used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// Seed is the world a suite starts from, and returns to on a reset step.
type Seed struct {
	Scrap         int                        `json:"scrap"`
	Items         map[string]int             `json:"items,omitempty"`
	Economics     float64                    `json:"economics,omitempty"`
	ServerRewards float64                    `json:"serverrewards,omitempty"`
	Permissions   []string                   `json:"permissions,omitempty"`
	Language      string                     `json:"language,omitempty"`
	Unloaded      []string                   `json:"unloaded_plugins,omitempty"` // economy plugins missing at boot
	Vehicles      map[string]json.RawMessage `json:"vehicles,omitempty"`         // merged over the default settings, by settings key
}

// TestStep defines a single interaction and its expected outcomes.
// Fields run in declaration order: reset, permissions, disconnect, start, choose, advance.
type TestStep struct {
	Name           string       `json:"name,omitempty"`
	Reset          bool         `json:"reset,omitempty"`
	Grant          []string     `json:"grant,omitempty"`
	Revoke         []string     `json:"revoke,omitempty"`
	Disconnect     bool         `json:"disconnect,omitempty"`
	Start          bool         `json:"start,omitempty"`
	Choose         *int         `json:"choose,omitempty"` // 1-based, as shown to the player
	AdvanceSeconds float64      `json:"advance_seconds,omitempty"`
	Expectations   Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Conversation
	Node       *string `json:"node,omitempty"`
	Ended      *bool   `json:"ended,omitempty"`
	Suppressed *bool   `json:"suppressed,omitempty"` // the plugin forced the transition
	Rejected   *bool   `json:"rejected,omitempty"`   // the server refused the response
	Available  []bool  `json:"available,omitempty"`  // how the client renders each response

	// Balances
	Scrap         *int           `json:"scrap,omitempty"`
	ShownScrap    *int           `json:"shown_scrap,omitempty"`
	Items         map[string]int `json:"items,omitempty"`
	Economics     *float64       `json:"economics,omitempty"`
	ServerRewards *float64       `json:"serverrewards,omitempty"`

	// Vehicles
	Spawned      *int     `json:"spawned,omitempty"`
	Fuel         *int     `json:"fuel,omitempty"`           // of the last spawned vehicle
	Owned        *bool    `json:"owned,omitempty"`          // last spawned vehicle is owned by the player
	SpawnAgeSecs *float64 `json:"spawn_age_secs,omitempty"` // now minus the last spawned vehicle's spawn time

	// Player-facing effects of this step
	MessagesContain []string `json:"messages_contain,omitempty"`
	NoMessages      bool     `json:"no_messages,omitempty"`
	Records         []string `json:"records,omitempty"` // purchase record kinds, in order
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Messages []string
	IsReset  bool // True if this was a reset step (should not count toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Player   string // player ID used for this run
}
