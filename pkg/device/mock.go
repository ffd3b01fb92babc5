package device

import (
	"sync"
)

// StaticInventory is a fixed inventory for tests and the mock backend.
// Open hands out MockDevice handles built by the OpenFunc hook, or a default
// fully-capable mock when the hook is nil.
type StaticInventory struct {
	mu    sync.Mutex
	infos []Info

	// OpenFunc overrides handle creation. If nil, a default MockDevice is
	// returned for known IDs.
	OpenFunc func(id string) (Device, error)

	// OpenErr, when set, fails every Open with this error (e.g. permission
	// denial scenarios).
	OpenErr error
}

// NewStaticInventory creates an inventory over a fixed device list.
func NewStaticInventory(infos ...Info) *StaticInventory {
	return &StaticInventory{infos: infos}
}

// Devices returns the inventory.
func (s *StaticInventory) Devices() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Info, len(s.infos))
	copy(out, s.infos)
	return out
}

// SetDevices swaps the inventory, emulating hot-plug.
func (s *StaticInventory) SetDevices(infos ...Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos = infos
}

// Open returns a handle for a device in the inventory.
func (s *StaticInventory) Open(id string) (Device, error) {
	s.mu.Lock()
	openErr := s.OpenErr
	openFunc := s.OpenFunc
	var found *Info
	for i := range s.infos {
		if s.infos[i].ID == id {
			found = &s.infos[i]
			break
		}
	}
	s.mu.Unlock()

	if openErr != nil {
		return nil, openErr
	}
	if openFunc != nil {
		return openFunc(id)
	}
	if found == nil {
		return nil, ErrNoDeviceForCapability
	}
	return NewMockDevice(*found), nil
}

// MockDevice implements Device for testing.
// Behavior can be customized via function fields; calls are recorded.
type MockDevice struct {
	info Info

	// Capability switches. The zero MockDevice supports everything.
	NoFocusPoint    bool
	NoExposurePoint bool
	FocusModes      map[FocusMode]bool    // nil = all supported
	ExposureModes   map[ExposureMode]bool // nil = all supported

	// SetFocusErr, when set, fails SetFocus.
	SetFocusErr error

	mu         sync.Mutex
	locked     bool
	closed     bool
	monitoring bool

	// Recorded calls for verification.
	FocusCalls      []FocusCall
	ExposureCalls   []ExposureCall
	MonitoringCalls []bool
	LockCount       int
	UnlockCount     int

	subjectArea chan struct{}
}

// FocusCall records one SetFocus invocation.
type FocusCall struct {
	Mode  FocusMode
	Point Point
}

// ExposureCall records one SetExposure invocation.
type ExposureCall struct {
	Mode  ExposureMode
	Point Point
}

// NewMockDevice creates a fully-capable mock handle.
func NewMockDevice(info Info) *MockDevice {
	return &MockDevice{
		info:        info,
		subjectArea: make(chan struct{}, 1),
	}
}

func (m *MockDevice) ID() string { return m.info.ID }
func (m *MockDevice) Info() Info { return m.info }

func (m *MockDevice) Lock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDeviceClosed
	}
	m.locked = true
	m.LockCount++
	return nil
}

func (m *MockDevice) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = false
	m.UnlockCount++
}

// Locked reports whether the configuration lock is currently held.
func (m *MockDevice) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

func (m *MockDevice) SupportsFocusPointOfInterest() bool    { return !m.NoFocusPoint }
func (m *MockDevice) SupportsExposurePointOfInterest() bool { return !m.NoExposurePoint }

func (m *MockDevice) SupportsFocusMode(mode FocusMode) bool {
	if m.FocusModes == nil {
		return true
	}
	return m.FocusModes[mode]
}

func (m *MockDevice) SupportsExposureMode(mode ExposureMode) bool {
	if m.ExposureModes == nil {
		return true
	}
	return m.ExposureModes[mode]
}

func (m *MockDevice) SetFocus(mode FocusMode, pt Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetFocusErr != nil {
		return m.SetFocusErr
	}
	m.FocusCalls = append(m.FocusCalls, FocusCall{Mode: mode, Point: pt})
	return nil
}

func (m *MockDevice) SetExposure(mode ExposureMode, pt Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExposureCalls = append(m.ExposureCalls, ExposureCall{Mode: mode, Point: pt})
	return nil
}

func (m *MockDevice) SetSubjectAreaMonitoring(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitoring = enabled
	m.MonitoringCalls = append(m.MonitoringCalls, enabled)
	return nil
}

// RecordedFocusCalls returns a copy of every SetFocus invocation so far.
func (m *MockDevice) RecordedFocusCalls() []FocusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FocusCall, len(m.FocusCalls))
	copy(out, m.FocusCalls)
	return out
}

// RecordedExposureCalls returns a copy of every SetExposure invocation so far.
func (m *MockDevice) RecordedExposureCalls() []ExposureCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExposureCall, len(m.ExposureCalls))
	copy(out, m.ExposureCalls)
	return out
}

// RecordedMonitoringCalls returns a copy of every monitoring toggle so far.
func (m *MockDevice) RecordedMonitoringCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.MonitoringCalls))
	copy(out, m.MonitoringCalls)
	return out
}

// Monitoring reports the current subject-area monitoring flag.
func (m *MockDevice) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

func (m *MockDevice) SubjectAreaChanged() <-chan struct{} { return m.subjectArea }

// TriggerSubjectAreaChange emits a subject-area-changed event.
func (m *MockDevice) TriggerSubjectAreaChange() {
	select {
	case m.subjectArea <- struct{}{}:
	default:
	}
}

func (m *MockDevice) ReadFrame() (Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Frame{}, ErrDeviceClosed
	}
	// A 2x2 gray BGR frame; enough for the encoder to chew on.
	return Frame{
		Data:   []byte{128, 128, 128, 128, 128, 128, 128, 128, 128, 128, 128, 128},
		Width:  2,
		Height: 2,
	}, nil
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDevice) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
