package conversation

import "github.com/jwebster45206/vehicle-vendor/pkg/host"

// Event is what the host reports when a player selects a response.
type Event struct {
	Vendor   host.VendorID
	Player   host.PlayerID
	Graph    *Graph
	Response ResponseNode
}

// Context wraps one Event for the duration of a single chain run.
// The lookahead is derived lazily and never written back to the graph.
type Context struct {
	Event

	resolved bool
	next     *SpeechNode
}

// NewContext creates the per-event context.
func NewContext(ev Event) *Context {
	return &Context{Event: ev}
}

// NextSpeech returns the speech node the selected response leads to.
func (c *Context) NextSpeech() (*SpeechNode, bool) {
	if !c.resolved {
		c.resolved = true
		if c.Response.Target != "" && c.Response.Target != EndNode {
			c.next, _ = c.Graph.Speech(c.Response.Target)
		}
	}
	return c.next, c.next != nil
}

// NextResponses returns the options reachable from the next speech node.
func (c *Context) NextResponses() []ResponseNode {
	next, ok := c.NextSpeech()
	if !ok {
		return nil
	}
	return next.Responses
}

// NextResponseWithAction finds the first option after the next speech node that runs action.
func (c *Context) NextResponseWithAction(action string) (ResponseNode, bool) {
	for _, r := range c.NextResponses() {
		if r.Action == action {
			return r, true
		}
	}
	return ResponseNode{}, false
}
