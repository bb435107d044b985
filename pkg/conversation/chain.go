package conversation

// Outcome is an interceptor's decision for one event.
type Outcome struct {
	node   string
	forced bool
}

// Defer lets the chain continue.
func Defer() Outcome { return Outcome{} }

// Force redirects the conversation to node and stops the chain.
func Force(node string) Outcome { return Outcome{node: node, forced: true} }

// End forces the conversation to terminate.
func End() Outcome { return Force(EndNode) }

// Forced returns the target node and whether a transition was forced.
func (o Outcome) Forced() (string, bool) { return o.node, o.forced }

// Interceptor inspects a response and may redirect the conversation.
type Interceptor interface {
	Name() string
	Intercept(c *Context) Outcome
}

// InterceptorFunc adapts a function to an Interceptor.
type InterceptorFunc struct {
	Label string
	Fn    func(c *Context) Outcome
}

func (f InterceptorFunc) Name() string                 { return f.Label }
func (f InterceptorFunc) Intercept(c *Context) Outcome { return f.Fn(c) }

// Chain runs interceptors in order until one forces a transition.
type Chain []Interceptor

// Run evaluates the chain. The returned name is the interceptor that decided, if any.
func (ch Chain) Run(c *Context) (Outcome, string) {
	for _, ic := range ch {
		if out := ic.Intercept(c); out.forced {
			return out, ic.Name()
		}
	}
	return Defer(), ""
}
