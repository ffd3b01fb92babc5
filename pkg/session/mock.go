package session

import (
	"errors"
	"sync"

	"github.com/teslashibe/go-capture/pkg/device"
)

// Mock implements Session for testing.
// Behavior can be customized via the flag fields; every call is recorded in
// Ops in arrival order so tests can assert ordering invariants.
type Mock struct {
	// FailAddInput, when set, rejects inputs of the given kind.
	FailAddInput map[device.Kind]bool

	// FailAddOutput rejects every AddOutput.
	FailAddOutput bool

	// StartErr fails Start with this error.
	StartErr error

	// ResumeFails makes Start succeed without the session actually running,
	// emulating a failed media-services-reset resume.
	ResumeFails bool

	mu      sync.Mutex
	running bool

	// Ops records the call sequence: "begin", "commit",
	// "add_input <kind>", "remove_input <kind>",
	// "add_output", "remove_output", "start", "stop".
	Ops []string

	inputs  map[device.Kind]Input
	outputs map[string]Output

	faults chan Fault
}

// NewMock creates a mock session with everything permitted.
func NewMock() *Mock {
	return &Mock{
		inputs:  make(map[device.Kind]Input),
		outputs: make(map[string]Output),
		faults:  make(chan Fault, 16),
	}
}

func (m *Mock) record(op string) {
	m.Ops = append(m.Ops, op)
}

// OpLog returns a copy of the recorded call sequence.
func (m *Mock) OpLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Ops))
	copy(out, m.Ops)
	return out
}

func (m *Mock) BeginConfiguration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("begin")
}

func (m *Mock) CommitConfiguration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("commit")
}

func (m *Mock) AddInput(in Input) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("add_input " + string(in.Kind()))
	if m.FailAddInput != nil && m.FailAddInput[in.Kind()] {
		return errors.New("rejected by mock")
	}
	m.inputs[in.Kind()] = in
	return nil
}

func (m *Mock) RemoveInput(in Input) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove_input " + string(in.Kind()))
	delete(m.inputs, in.Kind())
}

func (m *Mock) AddOutput(out Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("add_output")
	if m.FailAddOutput {
		return errors.New("rejected by mock")
	}
	m.outputs[out.ID()] = out
	return nil
}

func (m *Mock) RemoveOutput(out Output) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("remove_output")
	delete(m.outputs, out.ID())
}

func (m *Mock) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start")
	if m.StartErr != nil {
		return m.StartErr
	}
	if !m.ResumeFails {
		m.running = true
	}
	return nil
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	m.running = false
}

func (m *Mock) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// SetRunning forces the running flag, emulating hardware state drift.
func (m *Mock) SetRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = running
}

// Input returns the attached input of the given kind, or nil.
func (m *Mock) Input(kind device.Kind) Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs[kind]
}

// OutputCount returns the number of attached outputs.
func (m *Mock) OutputCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outputs)
}

func (m *Mock) Faults() <-chan Fault {
	return m.faults
}

// InjectFault delivers a fault as if the hardware raised it.
func (m *Mock) InjectFault(f Fault) {
	m.faults <- f
}

// StartCalls counts recorded start operations.
func (m *Mock) StartCalls() int {
	return m.countOp("start")
}

// StopCalls counts recorded stop operations.
func (m *Mock) StopCalls() int {
	return m.countOp("stop")
}

func (m *Mock) countOp(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.Ops {
		if o == op {
			n++
		}
	}
	return n
}
