// Package conversation models the host vendor dialogue as read-only data and runs
// interceptors against each response a player selects.
package conversation

// EndNode is the node name that ends a conversation.
const EndNode = "done"

// ConditionKind is the type of check the host makes before a response can be used.
type ConditionKind string

const (
	// NeedsScrap passes when the player holds at least Amount of the host currency.
	NeedsScrap ConditionKind = "needs_scrap"
)

// Condition gates a response. The host evaluates it both when rendering options
// (client side) and when a response is selected (server side).
type Condition struct {
	Kind    ConditionKind `json:"kind" yaml:"kind"`
	Amount  int           `json:"amount" yaml:"amount"`
	Inverse bool          `json:"inverse,omitempty" yaml:"inverse,omitempty"`
}

// Passes evaluates the condition against a host currency balance.
func (c Condition) Passes(balance int) bool {
	passes := balance >= c.Amount
	if c.Inverse {
		return !passes
	}
	return passes
}

// ResponseNode is one option the player can pick.
type ResponseNode struct {
	Text       string      `json:"text" yaml:"text"`
	Target     string      `json:"target" yaml:"target"`                     // speech node shown next
	Action     string      `json:"action,omitempty" yaml:"action,omitempty"` // host action run on selection
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ScrapThreshold returns the amount of the first non-inverse scrap condition.
func (r ResponseNode) ScrapThreshold() (int, bool) {
	for _, c := range r.Conditions {
		if c.Kind == NeedsScrap && !c.Inverse {
			return c.Amount, true
		}
	}
	return 0, false
}

// ConditionsPass reports whether every scrap condition holds for the balance.
func (r ResponseNode) ConditionsPass(scrap int) bool {
	for _, c := range r.Conditions {
		if c.Kind == NeedsScrap && !c.Passes(scrap) {
			return false
		}
	}
	return true
}

// SpeechNode is something the vendor says, followed by response options.
type SpeechNode struct {
	Name      string         `json:"name" yaml:"name"`
	Text      string         `json:"text" yaml:"text"`
	Responses []ResponseNode `json:"responses" yaml:"responses"`
}

// Graph is a snapshot of a vendor's full dialogue.
type Graph struct {
	ShortName string       `json:"short_name" yaml:"short_name"`
	Speeches  []SpeechNode `json:"speeches" yaml:"speeches"`
}

// Speech finds a speech node by name.
func (g *Graph) Speech(name string) (*SpeechNode, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.Speeches {
		if g.Speeches[i].Name == name {
			return &g.Speeches[i], true
		}
	}
	return nil, false
}
