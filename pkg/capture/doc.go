// Package capture coordinates exclusive access to a shared camera device.
//
// The Orchestrator merges independently-timed event sources (configuration
// requests, camera selection changes, start/stop calls, hardware faults and
// focus gestures) into one consistent session state. All hardware mutation
// is serialized on a single session queue; CPU-bound photo encoding runs in a
// separate worker pool so a slow encode never blocks hardware control.
//
// # Usage
//
//	orch := capture.New(capture.Deps{
//	    Session:   session.NewCore(),
//	    Inventory: device.NewUVCInventory(),
//	})
//	defer orch.Close()
//
//	orch.Configure(capture.Options{IncludeAudio: true})
//	orch.ChooseCamera(device.Selection{Type: device.TypeWideAngle, Position: device.PositionBack})
//	orch.Start()
//
//	for stage := range orch.TakePicture(photo.DefaultSettings()) {
//	    if stage.Kind == photo.StageDidFinishProcessingData && stage.Err == nil {
//	        os.WriteFile("shot.jpg", stage.Data, 0644)
//	    }
//	}
//
// # Observables
//
// IsRunning, ConfigResult and Status are replay-latest: a late subscriber
// immediately sees the current value, then every change in order. Each
// subscriber gets its own channel, so consumers never need locking of their
// own. Errors is a plain stream (no replay): configuration failures surface
// there without terminating the pipeline.
//
// # Recovery policies
//
// A media-services-reset runtime error gets exactly one automatic resume
// attempt, and only when the session was running when the error hit. Every
// other fault parks the orchestrator in StatusRequiresManualResume until the
// caller invokes Start again. Attach failures are never retried on their own;
// the failed capability stays absent until the next configuration change.
package capture
