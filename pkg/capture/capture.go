package capture

import (
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/photo"
)

// TakePicture runs one photo capture against the current configuration.
//
// The returned sequence is finite and not restartable; every call is an
// independent run. With no photo output configured the result is an empty,
// already-closed channel: zero stages and zero errors, so callers treat an
// unconfigured output as a no-op rather than a silent failure.
func (o *Orchestrator) TakePicture(settings photo.Settings) <-chan photo.Stage {
	cfg := o.snapshot()
	if cfg.PhotoOutput == nil {
		empty := make(chan photo.Stage)
		close(empty)
		return empty
	}

	var src photo.FrameSource
	if cfg.VideoInput != nil {
		src = cfg.VideoInput.Device()
	} else {
		src = noSource{}
	}
	return cfg.PhotoOutput.Capture(src, settings)
}

// noSource stands in when a photo output exists without a video input; the
// run then terminates with an error stage instead of wedging.
type noSource struct{}

func (noSource) ReadFrame() (device.Frame, error) {
	return device.Frame{}, ErrNoVideoInput
}
