package capture

import "github.com/teslashibe/go-capture/pkg/session"

// handleFault classifies a hardware fault and derives the session status.
//
// The monitor only acts during active periods: faults arriving while the
// session is not meant to run are discarded, so stale notifications can never
// drive recovery against a session nobody wants running.
func (o *Orchestrator) handleFault(st *pipelineState, f session.Fault) {
	if !st.desired {
		o.logger.Debug("fault ignored while inactive", "kind", f.Kind)
		return
	}

	switch f.Kind {
	case session.FaultRuntimeError:
		o.handleRuntimeError(f)

	case session.FaultInterruption:
		switch f.Reason {
		case session.ReasonDeviceInUse:
			// Another client owns the device; only the user can decide to
			// take it back.
			o.status.Set(StatusRequiresManualResume)
		case session.ReasonMultipleForegroundApps:
			// Persists until the interruption-ended notification arrives.
			o.status.Set(StatusUnavailable)
		}
		o.logger.Warn("session interrupted", "reason", f.Reason)

	case session.FaultInterruptionEnded:
		o.status.Set(StatusAvailable)
		o.logger.Info("interruption ended")
	}
}

// handleRuntimeError implements the one automatic recovery path: a
// media-services reset gets exactly one resume attempt, and only when the
// session was running when the error hit. Everything else requires a manual
// Start.
func (o *Orchestrator) handleRuntimeError(f session.Fault) {
	if !f.ServicesReset {
		o.logger.Error("session runtime error", "err", f.Err)
		o.status.Set(StatusRequiresManualResume)
		return
	}

	wasRunning, _ := o.running.Get()
	if !wasRunning {
		o.logger.Warn("media services reset while stopped, nothing to resume")
		return
	}

	o.logger.Warn("media services reset, attempting resume")
	o.q.DoWait(func() {
		if !o.s.IsRunning() {
			if err := o.s.Start(); err != nil {
				o.logger.Error("resume failed", "err", err)
			}
		}
		now := o.s.IsRunning()
		o.running.Set(now)
		if now {
			o.status.Set(StatusAvailable)
		} else {
			o.status.Set(StatusRequiresManualResume)
		}
	})
}
