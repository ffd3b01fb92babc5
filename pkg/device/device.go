// Package device models the capture hardware: the inventory of attachable
// devices, the selection policy that picks one, and the opened device handle
// with its focus/exposure controls.
package device

import "errors"

// Position is the physical placement of a capture device.
type Position string

const (
	PositionUnspecified Position = "unspecified"
	PositionBack        Position = "back"
	PositionFront       Position = "front"
)

// Type is the optical kind of a capture device.
type Type string

const (
	TypeWideAngle Type = "wide_angle"
	TypeTelephoto Type = "telephoto"
	TypeUltraWide Type = "ultra_wide"
	TypeDual      Type = "dual"
)

// Kind separates video devices from audio devices in the inventory.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Info describes one device in the inventory.
type Info struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Type     Type     `json:"type"`
	Position Position `json:"position"`
}

// Selection is the policy used to pick a video device.
// PositionUnspecified matches any position.
type Selection struct {
	Type     Type     `json:"type"`
	Position Position `json:"position"`
}

// FocusMode controls how the device drives its focus.
type FocusMode string

const (
	FocusLocked     FocusMode = "locked"
	FocusAuto       FocusMode = "auto"
	FocusContinuous FocusMode = "continuous"
)

// ExposureMode controls how the device drives its exposure.
type ExposureMode string

const (
	ExposureLocked     ExposureMode = "locked"
	ExposureAuto       ExposureMode = "auto"
	ExposureContinuous ExposureMode = "continuous"
)

// Point is a point of interest in normalized device coordinates [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the default point of interest.
var Center = Point{X: 0.5, Y: 0.5}

// Frame is one raw frame read from a video device.
// Data is packed BGR, row-major.
type Frame struct {
	Data   []byte
	Width  int
	Height int
}

// Sentinel errors shared by inventory implementations.
var (
	// ErrAccessNotGranted means the platform denied access to the device.
	// Never retried automatically; must be surfaced to the user.
	ErrAccessNotGranted = errors.New("device: access not granted")

	// ErrNoDeviceForCapability means the inventory has no device of the
	// requested kind (e.g. no audio device at all).
	ErrNoDeviceForCapability = errors.New("device: no device for requested capability")

	// ErrDeviceClosed is returned by operations on a closed handle.
	ErrDeviceClosed = errors.New("device: handle closed")
)

// Inventory lists attachable devices and opens handles to them.
// The inventory is read by the orchestrator but not owned by it.
type Inventory interface {
	// Devices returns the current inventory.
	Devices() []Info

	// Open acquires an exclusive handle to the device with the given ID.
	Open(id string) (Device, error)
}

// Device is an opened, exclusively-owned device handle.
//
// All configuration mutations must happen between Lock and Unlock. Callers
// must release the lock on every exit path, including failures.
type Device interface {
	ID() string
	Info() Info

	// Lock acquires the device configuration lock.
	Lock() error
	// Unlock releases the device configuration lock.
	Unlock()

	// Capability checks. Apply a mode or point only when supported.
	SupportsFocusPointOfInterest() bool
	SupportsFocusMode(m FocusMode) bool
	SupportsExposurePointOfInterest() bool
	SupportsExposureMode(m ExposureMode) bool

	// SetFocus applies a focus mode and point of interest.
	// Caller must hold the configuration lock.
	SetFocus(m FocusMode, pt Point) error
	// SetExposure applies an exposure mode and point of interest.
	// Caller must hold the configuration lock.
	SetExposure(m ExposureMode, pt Point) error
	// SetSubjectAreaMonitoring enables or disables subject-area-change events.
	// Caller must hold the configuration lock.
	SetSubjectAreaMonitoring(enabled bool) error

	// SubjectAreaChanged fires when the device reports that the scene in
	// front of it changed significantly. Only fires while monitoring is on.
	SubjectAreaChanged() <-chan struct{}

	// ReadFrame reads one frame from the device.
	ReadFrame() (Frame, error)

	// Close releases the handle. The handle is unusable afterwards.
	Close() error
}
