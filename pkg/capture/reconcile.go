package capture

// reconcile drives the session's actual running state toward the desired
// flag. Runs on the session queue; when the two already match it issues no
// start or stop at all, since redundant calls are observable as preview
// flicker and wasted hardware cycles.
func (o *Orchestrator) reconcile(st *pipelineState) {
	desired := st.desired
	o.q.Do(func() {
		actual := o.s.IsRunning()
		if actual == desired {
			return
		}
		if desired {
			if err := o.s.Start(); err != nil {
				o.logger.Error("session start failed", "err", err)
				o.errs.Publish(err)
			}
		} else {
			o.s.Stop()
		}
		o.running.Set(o.s.IsRunning())
	})
}
