// Package session models the live capture session: the mutable set of
// attached inputs and outputs, its running state, and the fault events the
// hardware raises against it.
//
// All mutation must go through a Queue (see queue.go) and, for attach/detach,
// through a Mutator so configuration changes stay transactional.
package session

import (
	"errors"

	"github.com/teslashibe/go-capture/pkg/device"
)

// Sentinel errors for attach failures (capacity or compatibility).
var (
	ErrUnableToAttachInput  = errors.New("session: unable to attach input")
	ErrUnableToAttachOutput = errors.New("session: unable to attach output")
)

// Input is an attachable media source handle.
// Ownership is exclusive to the session while attached.
type Input interface {
	ID() string
	Kind() device.Kind
	Label() string
}

// Output is an attachable media sink handle.
type Output interface {
	ID() string
	Label() string
}

// FaultKind classifies a fault notification.
type FaultKind string

const (
	// FaultRuntimeError is a hardware error raised while running.
	FaultRuntimeError FaultKind = "runtime_error"
	// FaultInterruption means another actor took the hardware away.
	FaultInterruption FaultKind = "interruption"
	// FaultInterruptionEnded means a previous interruption is over.
	FaultInterruptionEnded FaultKind = "interruption_ended"
)

// InterruptionReason says why the session was interrupted.
type InterruptionReason string

const (
	// ReasonDeviceInUse: another client holds the device. Requires the user
	// to come back and start again.
	ReasonDeviceInUse InterruptionReason = "device_in_use_by_another_client"
	// ReasonMultipleForegroundApps: the video device is unavailable while
	// several foreground apps compete. Clears when the interruption ends.
	ReasonMultipleForegroundApps InterruptionReason = "not_available_with_multiple_foreground_apps"
)

// Fault is one fault notification from the live session.
type Fault struct {
	Kind FaultKind

	// ServicesReset marks a runtime error as a media-services reset,
	// the one class of error with an automatic recovery path.
	ServicesReset bool
	// Err carries the underlying runtime error.
	Err error

	// Reason is set for interruptions.
	Reason InterruptionReason
}

// Session is the live capture session.
//
// Implementations must tolerate all calls arriving on the session queue; they
// need no internal ordering beyond that.
type Session interface {
	// BeginConfiguration opens an atomic reconfiguration block.
	BeginConfiguration()
	// CommitConfiguration closes it, applying the batched changes.
	CommitConfiguration()

	// AddInput attaches an input. Fails with ErrUnableToAttachInput when the
	// session rejects it (capacity, compatibility).
	AddInput(in Input) error
	// RemoveInput detaches an input. Detaching an unattached input is a no-op.
	RemoveInput(in Input)

	// AddOutput attaches an output. Fails with ErrUnableToAttachOutput when
	// rejected.
	AddOutput(out Output) error
	// RemoveOutput detaches an output.
	RemoveOutput(out Output)

	// Start begins running the session. Idempotence is the caller's job: the
	// reconciler never calls Start when the session already runs.
	Start() error
	// Stop halts the session.
	Stop()
	// IsRunning reports the actual running state.
	IsRunning() bool

	// Faults delivers hardware fault notifications.
	Faults() <-chan Fault
}
