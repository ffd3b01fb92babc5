package capture

import (
	"errors"

	"github.com/teslashibe/go-capture/pkg/device"
)

// ErrNoVideoInput is published when a focus request arrives with no video
// device attached.
var ErrNoVideoInput = errors.New("capture: no video input attached")

// applyFocusPatch applies a partial focus/exposure update to the current
// video device on the session queue.
func (o *Orchestrator) applyFocusPatch(p FocusPatch) {
	cfg := o.snapshot()
	if cfg.VideoInput == nil {
		o.errs.Publish(ErrNoVideoInput)
		return
	}
	dev := cfg.VideoInput.Device()

	var err error
	o.q.DoWait(func() {
		err = applyPatch(dev, p)
	})
	if err != nil {
		o.logger.Warn("focus update failed", "err", err)
		o.errs.Publish(err)
	}
}

// applyPatch holds the device configuration lock for the duration of the
// update and releases it on every exit path. Each field is applied only when
// the device supports point-of-interest driving and the requested mode;
// unsupported requests are skipped, not errors.
func applyPatch(dev device.Device, p FocusPatch) error {
	if err := dev.Lock(); err != nil {
		return err
	}
	defer dev.Unlock()

	if p.Focus != nil && dev.SupportsFocusPointOfInterest() && dev.SupportsFocusMode(p.Focus.Mode) {
		if err := dev.SetFocus(p.Focus.Mode, p.Focus.Point); err != nil {
			return err
		}
	}
	if p.Exposure != nil && dev.SupportsExposurePointOfInterest() && dev.SupportsExposureMode(p.Exposure.Mode) {
		if err := dev.SetExposure(p.Exposure.Mode, p.Exposure.Point); err != nil {
			return err
		}
	}
	if p.MonitorSubjectArea != nil {
		if err := dev.SetSubjectAreaMonitoring(*p.MonitorSubjectArea); err != nil {
			return err
		}
	}
	return nil
}
