// Package errctx provides the diagnostic call trail attached to every
// instruction that crosses a channel or the server connection.
package errctx

import (
	"fmt"
	"strings"
)

// ContextType names one hop: the unit that handled an instruction and what
// it was handling.
type ContextType struct {
	Unit string `cbor:"unit"`
	Call string `cbor:"call"`
}

// Client tags a hop inside the client for the given instruction kind.
func Client(call string) ContextType {
	return ContextType{Unit: "client", Call: call}
}

// Server tags a hop that happened on the server side.
func Server(call string) ContextType {
	return ContextType{Unit: "server", Call: call}
}

// Thread tags the named execution unit itself.
func Thread(name string) ContextType {
	return ContextType{Unit: "thread", Call: name}
}

// String returns "unit: call".
func (c ContextType) String() string {
	return fmt.Sprintf("%s: %s", c.Unit, c.Call)
}

// Context is an ordered, append-only trail of hops. It is a value: AddCall
// returns a new Context and never modifies the receiver.
type Context struct {
	calls []ContextType
}

// New returns an empty trail.
func New() Context {
	return Context{}
}

// FromCalls builds a trail from decoded calls, e.g. off the wire.
func FromCalls(calls []ContextType) Context {
	if len(calls) == 0 {
		return Context{}
	}
	c := make([]ContextType, len(calls))
	copy(c, calls)
	return Context{calls: c}
}

// AddCall returns a copy of the trail with call appended.
func (c Context) AddCall(call ContextType) Context {
	calls := make([]ContextType, len(c.calls), len(c.calls)+1)
	copy(calls, c.calls)
	return Context{calls: append(calls, call)}
}

// Calls returns a copy of the hops, oldest first.
func (c Context) Calls() []ContextType {
	out := make([]ContextType, len(c.calls))
	copy(out, c.calls)
	return out
}

// Len returns the number of hops.
func (c Context) Len() int {
	return len(c.calls)
}

// Last returns the most recent hop, or false for an empty trail.
func (c Context) Last() (ContextType, bool) {
	if len(c.calls) == 0 {
		return ContextType{}, false
	}
	return c.calls[len(c.calls)-1], true
}

// String renders the trail for error reports.
func (c Context) String() string {
	var b strings.Builder
	b.WriteString("Originating Thread(s):\n")
	for i, call := range c.calls {
		fmt.Fprintf(&b, "%d. %s\n", i+1, call)
	}
	return b.String()
}
