package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-capture/pkg/capture"
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/hub"
	"github.com/teslashibe/go-capture/pkg/photo"
)

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Running      bool                   `json:"running"`
	Status       string                 `json:"status"`
	Config       *ConfigSummary         `json:"config,omitempty"`
	Capabilities device.CapabilityTable `json:"capabilities"`
}

// handleStatus returns a snapshot of the pipeline state, including the
// backend capability table so clients know what the hardware can express.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.configMu.RLock()
	cfg := s.config
	s.configMu.RUnlock()

	return c.JSON(StatusResponse{
		Running:      s.ctrl.Running(),
		Status:       string(s.ctrl.CurrentStatus()),
		Config:       cfg,
		Capabilities: s.caps,
	})
}

// ConfigureRequest is the /api/configure body.
type ConfigureRequest struct {
	IncludeAudio bool `json:"include_audio"`
}

// handleConfigure submits a configuration round. The outcome arrives on the
// event stream; the POST only acknowledges submission.
func (s *Server) handleConfigure(c *fiber.Ctx) error {
	var req ConfigureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	s.ctrl.Configure(capture.Options{IncludeAudio: req.IncludeAudio})
	return c.JSON(fiber.Map{"accepted": true})
}

// CameraRequest is the /api/camera body.
type CameraRequest struct {
	Type     string `json:"type"`
	Position string `json:"position"`
}

// handleCamera submits a camera selection change.
func (s *Server) handleCamera(c *fiber.Ctx) error {
	var req CameraRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	sel := device.Selection{
		Type:     device.TypeWideAngle,
		Position: device.PositionUnspecified,
	}
	if req.Type != "" {
		sel.Type = device.Type(req.Type)
	}
	switch req.Position {
	case "back":
		sel.Position = device.PositionBack
	case "front":
		sel.Position = device.PositionFront
	case "":
	default:
		return badRequest(c, fiber.NewError(fiber.StatusBadRequest, "unknown position "+req.Position))
	}

	s.ctrl.ChooseCamera(sel)
	return c.JSON(fiber.Map{"accepted": true})
}

func (s *Server) handleStart(c *fiber.Ctx) error {
	s.ctrl.Start()
	return c.JSON(fiber.Map{"accepted": true})
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	s.ctrl.Stop()
	return c.JSON(fiber.Map{"accepted": true})
}

// FocusRequest is the /api/focus body. Omitted fields stay untouched.
type FocusRequest struct {
	Focus              *FocusField `json:"focus"`
	Exposure           *FocusField `json:"exposure"`
	MonitorSubjectArea *bool       `json:"monitor_subject_area"`
}

// FocusField names a mode and a point of interest in normalized coordinates.
type FocusField struct {
	Mode string  `json:"mode"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// handleFocus submits a partial focus/exposure update.
func (s *Server) handleFocus(c *fiber.Ctx) error {
	var req FocusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	patch := capture.FocusPatch{MonitorSubjectArea: req.MonitorSubjectArea}
	if req.Focus != nil {
		patch.Focus = &capture.FocusOption{
			Mode:  device.FocusMode(req.Focus.Mode),
			Point: device.Point{X: req.Focus.X, Y: req.Focus.Y},
		}
	}
	if req.Exposure != nil {
		patch.Exposure = &capture.ExposureOption{
			Mode:  device.ExposureMode(req.Exposure.Mode),
			Point: device.Point{X: req.Exposure.X, Y: req.Exposure.Y},
		}
	}

	s.ctrl.Focus(patch)
	return c.JSON(fiber.Map{"accepted": true})
}

// CaptureRequest is the /api/capture body.
type CaptureRequest struct {
	Orientation string `json:"orientation"`
	Flash       string `json:"flash"`
	LivePhoto   bool   `json:"live_photo"`
}

// handleCapture starts a photo capture and returns its ID. Stages stream at
// /ws/captures/:id; clients that connect late get a replay.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	settings := photo.DefaultSettings()
	if req.Orientation != "" {
		settings.Orientation = photo.Orientation(req.Orientation)
	}
	if req.Flash != "" {
		settings.Flash = photo.FlashMode(req.Flash)
	}
	settings.LivePhoto = req.LivePhoto

	stages := s.ctrl.TakePicture(settings)

	// Peek the first stage to learn the request ID. A closed channel means
	// no photo output is configured.
	first, ok := <-stages
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "no photo output configured",
		})
	}

	s.trackCapture(first, stages)
	return c.JSON(fiber.Map{"capture_id": first.RequestID})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// handleEventsWS streams session events. The current running flag and status
// are sent first so clients never start from nothing.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	running := s.ctrl.Running()
	snap := newEvent("running")
	snap.Running = &running
	c.WriteJSON(snap)

	st := newEvent("status")
	st.Status = string(s.ctrl.CurrentStatus())
	c.WriteJSON(st)

	client := hub.NewClient(s.eventHub, c)
	client.Run()
}

// handleCaptureWS streams the stages of one capture, replaying recorded
// stages first. The subscription is taken atomically with the replay
// snapshot, so a stage recorded while the replay is being written still
// arrives, exactly once. For a finished capture the replay is the whole
// stream.
func (s *Server) handleCaptureWS(c *websocket.Conn) {
	run := s.captureByID(c.Params("id"))
	if run == nil {
		c.WriteJSON(fiber.Map{"error": "unknown capture id"})
		c.Close()
		return
	}

	past, live, cancel, done := run.subscribe()
	defer cancel()

	for _, ev := range past {
		if err := c.WriteJSON(ev); err != nil {
			c.Close()
			return
		}
	}
	if done {
		c.Close()
		return
	}

	// Clients send nothing; reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-live:
			if !ok {
				c.Close()
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				c.Close()
				return
			}
		case <-gone:
			c.Close()
			return
		}
	}
}
