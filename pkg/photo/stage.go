package photo

import (
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-capture/pkg/device"
)

// Sentinel errors for capture processing.
var (
	// ErrNoSampleBuffer means the capture produced no raw buffer to encode.
	ErrNoSampleBuffer = errors.New("photo: no sample buffer")

	// ErrLiveClipUnsupported means the backend cannot record live-photo clips.
	ErrLiveClipUnsupported = errors.New("photo: live clip not supported by backend")
)

// EncodeError wraps a failed buffer-to-bytes conversion.
type EncodeError struct {
	RequestID string
	Err       error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("photo: encode request %s: %v", e.RequestID, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error { return e.Err }

// StageKind identifies a step in the capture sequence.
type StageKind string

const (
	StageWillBegin                    StageKind = "will_begin"
	StageWillCapture                  StageKind = "will_capture"
	StageDidCapture                   StageKind = "did_capture"
	StageDidFinishRecordingLivePhoto  StageKind = "did_finish_recording_live_photo"
	StageDidFinishProcessingLivePhoto StageKind = "did_finish_processing_live_photo"
	StageDidFinishProcessingPhoto     StageKind = "did_finish_processing_photo"
	StageDidFinishProcessingData      StageKind = "did_finish_processing_data"
	// StageDidFinishCapture is terminal: always last, and the stream closes
	// immediately after it.
	StageDidFinishCapture StageKind = "did_finish_capture"
)

// Stage is one event in a capture run. Every stage carries the request
// identity and the resolved settings; the remaining fields depend on Kind.
type Stage struct {
	RequestID string    `json:"request_id"`
	Kind      StageKind `json:"kind"`
	Settings  Settings  `json:"settings"`

	// Live-photo stages.
	LivePhotoPath     string        `json:"live_photo_path,omitempty"`
	LivePhotoDuration time.Duration `json:"live_photo_duration,omitempty"`

	// Photo-processing stage: the raw buffer and optional preview.
	Raw     *device.Frame `json:"-"`
	Preview *device.Frame `json:"-"`

	// Data stage: final encoded bytes.
	Data []byte `json:"-"`

	// Err is set on failed processing and terminal stages.
	Err error `json:"-"`
}

// Terminal reports whether this stage ends the sequence.
func (s Stage) Terminal() bool {
	return s.Kind == StageDidFinishCapture
}
