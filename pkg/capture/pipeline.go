package capture

import (
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/outcome"
	"github.com/teslashibe/go-capture/pkg/photo"
	"github.com/teslashibe/go-capture/pkg/session"
)

// reconfigure runs a full configuration round: re-resolve the video device
// under the current selection, open or drop the audio input, allocate a fresh
// photo output. Each slot swaps independently; one slot's failure never
// blocks the others.
func (o *Orchestrator) reconfigure(st *pipelineState) {
	o.resolveVideoSlot(st)
	o.resolveAudioSlot(st)
	o.allocPhotoSlot(st)
	o.publishComposite(st)
	o.reconcile(st)
}

// fail surfaces a configuration error on both the error stream and the
// replay-latest config result without terminating the pipeline.
func (o *Orchestrator) fail(err error) {
	o.logger.Warn("configuration failed", "err", err)
	o.errs.Publish(err)
	o.configResult.Set(outcome.Fail[Config](err))
}

// resolveVideoSlot re-resolves the video device and swaps the input.
//
// The previous handle is always detached first; when resolution or attach
// fails the slot is left absent until the next configuration change corrects
// it. No rollback to the old handle.
func (o *Orchestrator) resolveVideoSlot(st *pipelineState) {
	prev := o.snapshot().VideoInput

	detachPrev := func() {
		if prev == nil {
			return
		}
		o.mut.SwapInput(prev, nil)
		prev.Close()
		o.setVideo(nil)
		st.subjectCh = nil
	}

	info, err := device.Resolve(o.inv, st.sel)
	if err != nil {
		detachPrev()
		st.videoReady = true
		o.fail(err)
		return
	}

	dev, err := o.inv.Open(info.ID)
	if err != nil {
		detachPrev()
		st.videoReady = true
		o.fail(err)
		return
	}

	// A nil *DeviceInput must stay a nil Input across the interface boundary.
	var prevIn session.Input
	if prev != nil {
		prevIn = prev
	}
	next := session.NewDeviceInput(dev)
	swapErr := o.mut.SwapInput(prevIn, next)
	if prev != nil {
		prev.Close()
	}
	if swapErr != nil {
		dev.Close()
		o.setVideo(nil)
		st.subjectCh = nil
		st.videoReady = true
		o.fail(swapErr)
		return
	}

	o.setVideo(next)
	st.subjectCh = dev.SubjectAreaChanged()
	st.videoReady = true
	o.logger.Info("video input configured", "device", info.Name)
}

// resolveAudioSlot opens an audio input when requested, drops it otherwise.
func (o *Orchestrator) resolveAudioSlot(st *pipelineState) {
	prev := o.snapshot().AudioInput

	if st.opts == nil || !st.opts.IncludeAudio {
		// Nothing to detach on the first transition from "no audio".
		if prev != nil {
			o.mut.SwapInput(prev, nil)
			o.setAudio(nil)
		}
		st.audioReady = true
		return
	}

	info, err := device.ResolveAudio(o.inv)
	if err != nil {
		if prev != nil {
			o.mut.SwapInput(prev, nil)
			o.setAudio(nil)
		}
		st.audioReady = true
		o.fail(err)
		return
	}

	var prevIn session.Input
	if prev != nil {
		prevIn = prev
	}
	next := session.NewAudioInput(info)
	if swapErr := o.mut.SwapInput(prevIn, next); swapErr != nil {
		o.setAudio(nil)
		st.audioReady = true
		o.fail(swapErr)
		return
	}

	o.setAudio(next)
	st.audioReady = true
	o.logger.Info("audio input configured", "device", info.Name)
}

// allocPhotoSlot allocates a fresh photo output, replacing the previous one.
func (o *Orchestrator) allocPhotoSlot(st *pipelineState) {
	prev := o.snapshot().PhotoOutput
	var prevOut session.Output
	if prev != nil {
		prevOut = prev
	}

	next := photo.NewOutput(o.pool)
	next.LiveClip = o.liveClip

	if swapErr := o.mut.SwapOutput(prevOut, next); swapErr != nil {
		o.setPhoto(nil)
		st.photoReady = true
		o.fail(swapErr)
		return
	}

	o.setPhoto(next)
	st.photoReady = true
}

// publishComposite emits the composed Config once every slot has produced at
// least one outcome. Later slot updates re-emit with the latest value of each
// slot; the other slots are not re-run.
func (o *Orchestrator) publishComposite(st *pipelineState) {
	if !st.videoReady || !st.audioReady || !st.photoReady {
		return
	}
	o.configResult.Set(outcome.OK(o.snapshot()))
}
