package capture

import (
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-capture/internal/log"
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/observe"
	"github.com/teslashibe/go-capture/pkg/outcome"
	"github.com/teslashibe/go-capture/pkg/photo"
	"github.com/teslashibe/go-capture/pkg/session"
)

// DefaultSelection is the camera used before any ChooseCamera call.
var DefaultSelection = device.Selection{
	Type:     device.TypeWideAngle,
	Position: device.PositionUnspecified,
}

// Deps are the orchestrator's collaborators. Execution contexts are injected
// here, never pulled from ambient globals.
type Deps struct {
	// Session is the live capture session. Required.
	Session session.Session
	// Inventory lists and opens capture devices. Required.
	Inventory device.Inventory

	// Queue serializes hardware mutation. Created internally when nil.
	Queue *session.Queue
	// Encoder converts raw frames to bytes. Defaults to GoCVEncoder.
	Encoder photo.Encoder
	// EncodeWorkers bounds concurrent encodes. Defaults to 2.
	EncodeWorkers int
	// LiveClip records live-photo clips; nil when the backend cannot.
	LiveClip func(requestID string, frame device.Frame) (string, time.Duration, error)
	// Logger defaults to the capture component logger.
	Logger *slog.Logger
}

// Orchestrator owns the capture session's configuration, lifecycle and
// recovery. See the package documentation for the full model.
type Orchestrator struct {
	q        *session.Queue
	ownQueue bool
	s        session.Session
	inv      device.Inventory
	mut      *session.Mutator
	pool     *photo.Pool
	liveClip func(string, device.Frame) (string, time.Duration, error)
	logger   *slog.Logger

	running      *observe.Value[bool]
	configResult *observe.Value[outcome.Outcome[Config]]
	status       *observe.Value[Status]
	subjectArea  *observe.Notifier
	errs         *observe.Stream[error]

	optsCh    chan Options
	selCh     chan device.Selection
	desiredCh chan bool
	focusCh   chan FocusPatch

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu  sync.RWMutex
	cfg Config
}

// New constructs an orchestrator and starts its dispatch loop.
func New(deps Deps) *Orchestrator {
	q := deps.Queue
	ownQueue := false
	if q == nil {
		q = session.NewQueue("session")
		ownQueue = true
	}
	enc := deps.Encoder
	if enc == nil {
		enc = &photo.GoCVEncoder{}
	}
	workers := deps.EncodeWorkers
	if workers < 1 {
		workers = 2
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Component("capture")
	}

	o := &Orchestrator{
		q:        q,
		ownQueue: ownQueue,
		s:        deps.Session,
		inv:      deps.Inventory,
		mut:      session.NewMutator(q, deps.Session),
		pool:     photo.NewPool(enc, workers),
		liveClip: deps.LiveClip,
		logger:   logger,

		running:      observe.NewValue[bool](),
		configResult: observe.NewValue[outcome.Outcome[Config]](),
		status:       observe.NewValue[Status](),
		subjectArea:  observe.NewNotifier(),
		errs:         observe.NewStream[error](),

		optsCh:    make(chan Options, 8),
		selCh:     make(chan device.Selection, 8),
		desiredCh: make(chan bool, 8),
		focusCh:   make(chan FocusPatch, 8),

		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	o.running.Set(false)
	o.status.Set(StatusAvailable)

	go o.run()
	return o
}

// Configure requests a (re)configuration with the given options.
// Idempotent per call; a newer request supersedes one still queued.
func (o *Orchestrator) Configure(opts Options) {
	select {
	case o.optsCh <- opts:
	case <-o.done:
	}
}

// ChooseCamera requests a video device re-resolution under a new policy.
func (o *Orchestrator) ChooseCamera(sel device.Selection) {
	select {
	case o.selCh <- sel:
	case <-o.done:
	}
}

// Start sets the desired state to active.
func (o *Orchestrator) Start() {
	select {
	case o.desiredCh <- true:
	case <-o.done:
	}
}

// Stop sets the desired state to inactive.
func (o *Orchestrator) Stop() {
	select {
	case o.desiredCh <- false:
	case <-o.done:
	}
}

// Focus applies a partial focus/exposure update to the current video device.
func (o *Orchestrator) Focus(p FocusPatch) {
	select {
	case o.focusCh <- p:
	case <-o.done:
	}
}

// IsRunning subscribes to the observed running flag (replay-latest).
func (o *Orchestrator) IsRunning() (<-chan bool, func()) {
	return o.running.Subscribe()
}

// Running returns the latest observed running flag.
func (o *Orchestrator) Running() bool {
	v, _ := o.running.Get()
	return v
}

// ConfigResult subscribes to configuration outcomes (replay-latest).
func (o *Orchestrator) ConfigResult() (<-chan outcome.Outcome[Config], func()) {
	return o.configResult.Subscribe()
}

// Status subscribes to the derived session status (replay-latest).
func (o *Orchestrator) Status() (<-chan Status, func()) {
	return o.status.Subscribe()
}

// CurrentStatus returns the latest status.
func (o *Orchestrator) CurrentStatus() Status {
	v, ok := o.status.Get()
	if !ok {
		return StatusAvailable
	}
	return v
}

// Errors subscribes to the configuration error stream (no replay).
func (o *Orchestrator) Errors() (<-chan error, func()) {
	return o.errs.Subscribe()
}

// SubjectAreaChanged subscribes to subject-area-change notifications.
func (o *Orchestrator) SubjectAreaChanged() (<-chan struct{}, func()) {
	return o.subjectArea.Subscribe()
}

// Close tears the orchestrator down: stop the session, detach and release
// every handle, stop the dispatch loop. Blocks until done.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() { close(o.done) })
	<-o.stopped
}

// pipelineState is the dispatch loop's private state. Only the loop touches it.
type pipelineState struct {
	opts    *Options
	sel     device.Selection
	desired bool

	// Each slot must produce at least one outcome before the composite
	// Config is first emitted.
	videoReady, audioReady, photoReady bool

	// subjectCh is the current video device's notification channel; nil
	// while no device is attached.
	subjectCh <-chan struct{}
}

func (o *Orchestrator) run() {
	st := &pipelineState{sel: DefaultSelection}

	for {
		select {
		case <-o.done:
			o.teardown()
			close(o.stopped)
			return

		case opts := <-o.optsCh:
			opts = drainLatest(o.optsCh, opts)
			st.opts = &opts
			o.reconfigure(st)

		case sel := <-o.selCh:
			sel = drainLatest(o.selCh, sel)
			st.sel = sel
			o.resolveVideoSlot(st)
			o.publishComposite(st)
			o.reconcile(st)

		case desired := <-o.desiredCh:
			desired = drainLatest(o.desiredCh, desired)
			st.desired = desired
			o.reconcile(st)

		case p := <-o.focusCh:
			o.applyFocusPatch(p)

		case f := <-o.s.Faults():
			o.handleFault(st, f)

		case <-st.subjectCh:
			o.subjectArea.Notify()
			o.applyFocusPatch(centerReset())
		}
	}
}

// drainLatest empties a command channel, keeping only the newest value.
// A new request for a resource supersedes one still in flight.
func drainLatest[T any](ch <-chan T, latest T) T {
	for {
		select {
		case v := <-ch:
			latest = v
		default:
			return latest
		}
	}
}

func (o *Orchestrator) snapshot() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg
}

func (o *Orchestrator) setVideo(in *session.DeviceInput) {
	o.mu.Lock()
	o.cfg.VideoInput = in
	o.mu.Unlock()
}

func (o *Orchestrator) setAudio(in *session.AudioInput) {
	o.mu.Lock()
	o.cfg.AudioInput = in
	o.mu.Unlock()
}

func (o *Orchestrator) setPhoto(out *photo.Output) {
	o.mu.Lock()
	o.cfg.PhotoOutput = out
	o.mu.Unlock()
}

func (o *Orchestrator) teardown() {
	cfg := o.snapshot()

	o.q.DoWait(func() { o.s.Stop() })
	o.running.Set(false)

	if cfg.PhotoOutput != nil {
		o.mut.SwapOutput(cfg.PhotoOutput, nil)
		o.setPhoto(nil)
	}
	if cfg.AudioInput != nil {
		o.mut.SwapInput(cfg.AudioInput, nil)
		o.setAudio(nil)
	}
	if cfg.VideoInput != nil {
		o.mut.SwapInput(cfg.VideoInput, nil)
		cfg.VideoInput.Close()
		o.setVideo(nil)
	}
	if o.ownQueue {
		o.q.Close()
	}
	o.logger.Info("orchestrator closed")
}
