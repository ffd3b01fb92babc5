package capture

import (
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/photo"
	"github.com/teslashibe/go-capture/pkg/session"
)

// Options is one configuration request. Immutable per request.
type Options struct {
	IncludeAudio bool `json:"include_audio"`
}

// Config is the composed result of a successful (re)configuration.
// Produced fresh on every change; the previous Config's resources are
// released as part of producing the new one. Absent fields mean the
// corresponding capability failed to attach or was not requested.
type Config struct {
	VideoInput  *session.DeviceInput
	AudioInput  *session.AudioInput
	PhotoOutput *photo.Output
}

// Status is the derived availability of the capture session.
type Status string

const (
	// StatusAvailable: the session can run.
	StatusAvailable Status = "available"
	// StatusUnavailable: the video device is temporarily gone (e.g. multiple
	// foreground apps); clears when the interruption ends.
	StatusUnavailable Status = "unavailable"
	// StatusRequiresManualResume: automatic recovery is exhausted; the caller
	// must invoke Start again.
	StatusRequiresManualResume Status = "requires_manual_resume"
)

// FocusOption asks for a focus mode at a point of interest.
type FocusOption struct {
	Mode  device.FocusMode `json:"mode"`
	Point device.Point     `json:"point"`
}

// ExposureOption asks for an exposure mode at a point of interest.
type ExposureOption struct {
	Mode  device.ExposureMode `json:"mode"`
	Point device.Point        `json:"point"`
}

// FocusPatch is a partial focus/exposure update. A nil field leaves the
// device state untouched; a set field applies that value. This is the
// explicit "leave unchanged / set to X" descriptor per field.
type FocusPatch struct {
	Focus              *FocusOption    `json:"focus,omitempty"`
	Exposure           *ExposureOption `json:"exposure,omitempty"`
	MonitorSubjectArea *bool           `json:"monitor_subject_area,omitempty"`
}

// centerReset is the patch re-applied automatically after a subject-area
// change: centered continuous focus and exposure, monitoring off.
func centerReset() FocusPatch {
	monitor := false
	return FocusPatch{
		Focus:              &FocusOption{Mode: device.FocusContinuous, Point: device.Center},
		Exposure:           &ExposureOption{Mode: device.ExposureContinuous, Point: device.Center},
		MonitorSubjectArea: &monitor,
	}
}
