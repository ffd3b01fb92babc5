package session

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-capture/internal/log"
	"github.com/teslashibe/go-capture/pkg/device"
)

// Core is the in-process live session. It enforces the attachment capacity
// rules (one input per kind, one output) and tracks running state. Hardware
// backends report faults through EmitFault.
type Core struct {
	mu      sync.Mutex
	inputs  map[device.Kind]Input
	outputs map[string]Output
	running bool

	// configDepth tracks Begin/Commit nesting for diagnostics.
	configDepth int

	faults chan Fault
}

// NewCore creates an empty session.
func NewCore() *Core {
	return &Core{
		inputs:  make(map[device.Kind]Input),
		outputs: make(map[string]Output),
		faults:  make(chan Fault, 16),
	}
}

// BeginConfiguration opens an atomic reconfiguration block.
func (c *Core) BeginConfiguration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configDepth++
}

// CommitConfiguration closes the block.
func (c *Core) CommitConfiguration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configDepth == 0 {
		log.Component("session").Warn("commit without begin")
		return
	}
	c.configDepth--
}

// AddInput attaches an input. At most one input per kind.
func (c *Core) AddInput(in Input) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.inputs[in.Kind()]; exists {
		return fmt.Errorf("an input of kind %s is already attached", in.Kind())
	}
	c.inputs[in.Kind()] = in
	log.Component("session").Debug("input attached", "label", in.Label())
	return nil
}

// RemoveInput detaches an input. Unattached inputs are ignored.
func (c *Core) RemoveInput(in Input) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attached, ok := c.inputs[in.Kind()]; ok && attached.ID() == in.ID() {
		delete(c.inputs, in.Kind())
		log.Component("session").Debug("input detached", "label", in.Label())
	}
}

// AddOutput attaches an output. Capacity is one.
func (c *Core) AddOutput(out Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.outputs) >= 1 {
		return fmt.Errorf("output capacity reached")
	}
	c.outputs[out.ID()] = out
	log.Component("session").Debug("output attached", "label", out.Label())
	return nil
}

// RemoveOutput detaches an output.
func (c *Core) RemoveOutput(out Output) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.outputs[out.ID()]; ok {
		delete(c.outputs, out.ID())
		log.Component("session").Debug("output detached", "label", out.Label())
	}
}

// Input returns the attached input of the given kind, or nil.
func (c *Core) Input(kind device.Kind) Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputs[kind]
}

// Start begins running.
func (c *Core) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	log.Component("session").Info("session started")
	return nil
}

// Stop halts the session.
func (c *Core) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	log.Component("session").Info("session stopped")
}

// IsRunning reports the actual running state.
func (c *Core) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Faults delivers fault notifications emitted by the backend.
func (c *Core) Faults() <-chan Fault {
	return c.faults
}

// EmitFault publishes a fault. Backends call this when the hardware misbehaves.
// A full buffer drops the fault; a stale fault is worse than a missed one.
func (c *Core) EmitFault(f Fault) {
	select {
	case c.faults <- f:
	default:
		log.Component("session").Warn("fault buffer full, dropping", "kind", f.Kind)
	}
}
