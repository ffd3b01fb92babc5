// Package web exposes the capture pipeline over HTTP and websockets.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-capture/internal/log"
	"github.com/teslashibe/go-capture/pkg/capture"
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/hub"
	"github.com/teslashibe/go-capture/pkg/outcome"
	"github.com/teslashibe/go-capture/pkg/photo"
)

// Controller is the slice of the orchestrator the web layer drives.
// *capture.Orchestrator satisfies it.
type Controller interface {
	Configure(capture.Options)
	ChooseCamera(device.Selection)
	Start()
	Stop()
	Focus(capture.FocusPatch)
	TakePicture(photo.Settings) <-chan photo.Stage

	Running() bool
	CurrentStatus() capture.Status
	IsRunning() (<-chan bool, func())
	ConfigResult() (<-chan outcome.Outcome[capture.Config], func())
	Status() (<-chan capture.Status, func())
	Errors() (<-chan error, func())
}

// captureTTL is how long a finished capture stays replayable before its run
// is evicted from the registry.
const captureTTL = 5 * time.Minute

// Server is the capture daemon's HTTP surface.
type Server struct {
	app  *fiber.App
	addr string
	ctrl Controller
	caps device.CapabilityTable

	// One hub for the session event stream.
	eventHub *hub.Hub

	// In-flight and finished photo captures by request ID.
	captures   map[string]*captureRun
	capturesMu sync.RWMutex
	captureTTL time.Duration

	// Latest config summary for the status endpoint.
	config   *ConfigSummary
	configMu sync.RWMutex

	pumpDone chan struct{}
	pumpStop chan struct{}
	stopOnce sync.Once
}

// NewServer wires the routes and the event pump. Call Start to listen.
func NewServer(addr string, ctrl Controller, caps device.CapabilityTable) *Server {
	s := &Server{
		addr:       addr,
		ctrl:       ctrl,
		caps:       caps,
		eventHub:   hub.New("events"),
		captures:   make(map[string]*captureRun),
		captureTTL: captureTTL,
		pumpDone:   make(chan struct{}),
		pumpStop:   make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "captured",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/configure", s.handleConfigure)
	api.Post("/camera", s.handleCamera)
	api.Post("/start", s.handleStart)
	api.Post("/stop", s.handleStop)
	api.Post("/focus", s.handleFocus)
	api.Post("/capture", s.handleCapture)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/events", websocket.New(s.handleEventsWS))
	app.Get("/ws/captures/:id", websocket.New(s.handleCaptureWS))

	s.app = app
	go s.eventHub.Run()
	go s.pumpEvents()
	return s
}

// Start listens on the configured address. Blocks until Shutdown.
func (s *Server) Start() error {
	log.Info("http server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown gracefully stops the server, the event pump and the event hub.
func (s *Server) Shutdown() error {
	s.stopOnce.Do(func() { close(s.pumpStop) })
	<-s.pumpDone
	s.eventHub.Stop()
	return s.app.Shutdown()
}

// pumpEvents fans orchestrator observables into the event hub.
func (s *Server) pumpEvents() {
	defer close(s.pumpDone)

	runningCh, unsubRunning := s.ctrl.IsRunning()
	configCh, unsubConfig := s.ctrl.ConfigResult()
	statusCh, unsubStatus := s.ctrl.Status()
	errCh, unsubErrs := s.ctrl.Errors()

	defer func() {
		unsubRunning()
		unsubConfig()
		unsubStatus()
		unsubErrs()
	}()

	for {
		select {
		case running := <-runningCh:
			ev := newEvent("running")
			ev.Running = &running
			s.eventHub.BroadcastJSON(ev)

		case res := <-configCh:
			ev := newEvent("config")
			sum := outcome.Map(res, summarize)
			if summary, ok := sum.Value(); ok {
				ev.Config = summary
				s.configMu.Lock()
				s.config = summary
				s.configMu.Unlock()
			} else {
				ev.Error = sum.Err().Error()
			}
			s.eventHub.BroadcastJSON(ev)

		case status := <-statusCh:
			ev := newEvent("status")
			ev.Status = string(status)
			s.eventHub.BroadcastJSON(ev)

		case err := <-errCh:
			ev := newEvent("error")
			ev.Error = err.Error()
			s.eventHub.BroadcastJSON(ev)

		case <-s.pumpStop:
			return
		}
	}
}

// trackCapture consumes a stage stream into a run registered under its
// request ID so websocket clients can follow along or replay. The first
// stage is recorded before consumption starts to keep replay order intact.
// A finished run stays replayable for captureTTL, then drops from the
// registry.
func (s *Server) trackCapture(first photo.Stage, stages <-chan photo.Stage) *captureRun {
	id := first.RequestID
	run := newCaptureRun(id)
	s.capturesMu.Lock()
	s.captures[id] = run
	s.capturesMu.Unlock()

	run.record(newStageEvent(id, first))
	go func() {
		for stage := range stages {
			run.record(newStageEvent(id, stage))
		}
		run.finish()
		time.AfterFunc(s.captureTTL, func() { s.evictCapture(id) })
	}()
	return run
}

func (s *Server) evictCapture(id string) {
	s.capturesMu.Lock()
	delete(s.captures, id)
	s.capturesMu.Unlock()
}

func (s *Server) captureByID(id string) *captureRun {
	s.capturesMu.RLock()
	defer s.capturesMu.RUnlock()
	return s.captures[id]
}
