// Package gate provides the latch that pauses the input reader while a
// command it sent to the server is still being executed.
package gate

import "sync"

// Gate is a two-state latch. The zero value is not usable; call New.
// A *Gate is shared between the orchestrator and the input reader.
type Gate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	blocked bool
}

// New creates an unblocked gate.
func New() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Block arms the gate. The next WaitUntilUnblocked call waits until Unblock.
func (g *Gate) Block() {
	g.mu.Lock()
	g.blocked = true
	g.mu.Unlock()
}

// Unblock releases the gate and wakes every waiter. Unblocking an
// unblocked gate does nothing.
func (g *Gate) Unblock() {
	g.mu.Lock()
	g.blocked = false
	g.mu.Unlock()
	g.cond.Broadcast()
}

// WaitUntilUnblocked returns once the gate is unblocked.
func (g *Gate) WaitUntilUnblocked() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.blocked {
		g.cond.Wait()
	}
}

// Blocked reports the current state.
func (g *Gate) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blocked
}
