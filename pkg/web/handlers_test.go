package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-capture/pkg/capture"
	"github.com/teslashibe/go-capture/pkg/device"
	"github.com/teslashibe/go-capture/pkg/observe"
	"github.com/teslashibe/go-capture/pkg/outcome"
	"github.com/teslashibe/go-capture/pkg/photo"
)

// mockController records calls and hands out observables the pump can drain.
type mockController struct {
	mu         sync.Mutex
	configured []capture.Options
	cameras    []device.Selection
	focuses    []capture.FocusPatch
	starts     int
	stops      int

	running *observe.Value[bool]
	config  *observe.Value[outcome.Outcome[capture.Config]]
	status  *observe.Value[capture.Status]
	errs    *observe.Stream[error]

	// TakePictureFunc overrides capture behavior. Nil returns a closed
	// empty channel, the unconfigured-output shape.
	TakePictureFunc func(photo.Settings) <-chan photo.Stage
}

func newMockController() *mockController {
	return &mockController{
		running: observe.NewValue[bool](),
		config:  observe.NewValue[outcome.Outcome[capture.Config]](),
		status:  observe.NewValue[capture.Status](),
		errs:    observe.NewStream[error](),
	}
}

func (m *mockController) Configure(opts capture.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured = append(m.configured, opts)
}

func (m *mockController) ChooseCamera(sel device.Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cameras = append(m.cameras, sel)
}

func (m *mockController) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
}

func (m *mockController) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
}

func (m *mockController) Focus(p capture.FocusPatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focuses = append(m.focuses, p)
}

func (m *mockController) TakePicture(s photo.Settings) <-chan photo.Stage {
	if m.TakePictureFunc != nil {
		return m.TakePictureFunc(s)
	}
	empty := make(chan photo.Stage)
	close(empty)
	return empty
}

func (m *mockController) Running() bool {
	v, _ := m.running.Get()
	return v
}

func (m *mockController) CurrentStatus() capture.Status {
	v, ok := m.status.Get()
	if !ok {
		return capture.StatusAvailable
	}
	return v
}

func (m *mockController) IsRunning() (<-chan bool, func()) { return m.running.Subscribe() }
func (m *mockController) ConfigResult() (<-chan outcome.Outcome[capture.Config], func()) {
	return m.config.Subscribe()
}
func (m *mockController) Status() (<-chan capture.Status, func()) { return m.status.Subscribe() }
func (m *mockController) Errors() (<-chan error, func())          { return m.errs.Subscribe() }

func newTestServer(t *testing.T) (*Server, *mockController) {
	t.Helper()
	ctrl := newMockController()
	srv := NewServer("127.0.0.1:0", ctrl, device.Capabilities(device.BackendMock))
	t.Cleanup(func() { srv.Shutdown() })
	return srv, ctrl
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestHandleStatus(t *testing.T) {
	srv, ctrl := newTestServer(t)
	ctrl.running.Set(true)
	ctrl.status.Set(capture.StatusRequiresManualResume)

	resp := doJSON(t, srv, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Running {
		t.Error("running flag not reported")
	}
	if out.Status != string(capture.StatusRequiresManualResume) {
		t.Errorf("status = %s", out.Status)
	}
	if out.Capabilities.Backend != device.BackendMock {
		t.Errorf("capabilities backend = %s", out.Capabilities.Backend)
	}
	if !out.Capabilities.SubjectAreaMonitoring {
		t.Error("mock backend capability table not exposed")
	}
}

func TestHandleConfigure(t *testing.T) {
	srv, ctrl := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/configure", ConfigureRequest{IncludeAudio: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.configured) != 1 || !ctrl.configured[0].IncludeAudio {
		t.Errorf("configured = %+v", ctrl.configured)
	}
}

func TestHandleCamera(t *testing.T) {
	srv, ctrl := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/camera",
		CameraRequest{Type: "telephoto", Position: "back"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.cameras) != 1 {
		t.Fatalf("cameras = %+v", ctrl.cameras)
	}
	sel := ctrl.cameras[0]
	if sel.Type != device.TypeTelephoto || sel.Position != device.PositionBack {
		t.Errorf("selection = %+v", sel)
	}
}

func TestHandleCamera_RejectsUnknownPosition(t *testing.T) {
	srv, ctrl := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/camera", CameraRequest{Position: "sideways"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.cameras) != 0 {
		t.Error("invalid selection reached the controller")
	}
}

func TestHandleStartStop(t *testing.T) {
	srv, ctrl := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/start", nil)
	doJSON(t, srv, http.MethodPost, "/api/stop", nil)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.starts != 1 || ctrl.stops != 1 {
		t.Errorf("starts = %d, stops = %d", ctrl.starts, ctrl.stops)
	}
}

func TestHandleFocus_PartialPatch(t *testing.T) {
	srv, ctrl := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/focus", FocusRequest{
		Focus: &FocusField{Mode: "locked", X: 0.25, Y: 0.75},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if len(ctrl.focuses) != 1 {
		t.Fatalf("focuses = %+v", ctrl.focuses)
	}
	p := ctrl.focuses[0]
	if p.Focus == nil || p.Focus.Mode != device.FocusLocked {
		t.Errorf("focus field = %+v", p.Focus)
	}
	if p.Exposure != nil || p.MonitorSubjectArea != nil {
		t.Error("omitted fields did not stay nil")
	}
}

func TestHandleCapture_NoOutputConflicts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/capture", CaptureRequest{})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestHandleCapture_ReturnsIDAndTracksRun(t *testing.T) {
	srv, ctrl := newTestServer(t)
	ctrl.TakePictureFunc = func(s photo.Settings) <-chan photo.Stage {
		ch := make(chan photo.Stage, 4)
		ch <- photo.Stage{RequestID: "req-1", Kind: photo.StageWillBegin, Settings: s}
		ch <- photo.Stage{RequestID: "req-1", Kind: photo.StageDidFinishProcessingData,
			Settings: s, Data: []byte("jpeg")}
		ch <- photo.Stage{RequestID: "req-1", Kind: photo.StageDidFinishCapture, Settings: s}
		close(ch)
		return ch
	}

	resp := doJSON(t, srv, http.MethodPost, "/api/capture",
		CaptureRequest{Orientation: "landscape_left"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["capture_id"] != "req-1" {
		t.Errorf("capture_id = %q", out["capture_id"])
	}

	run := srv.captureByID("req-1")
	if run == nil {
		t.Fatal("capture run not registered")
	}
	waitReplay(t, run, 3)
	stages, done := run.replay()
	if !done {
		t.Error("run not marked done")
	}
	if stages[0].Kind != string(photo.StageWillBegin) {
		t.Errorf("first stage = %s", stages[0].Kind)
	}
	last := stages[len(stages)-1]
	if last.Kind != string(photo.StageDidFinishCapture) {
		t.Errorf("last stage = %s", last.Kind)
	}
	if stages[1].DataBase64 == "" {
		t.Error("data stage lost its payload")
	}
}

func TestFinishedCaptureIsEvicted(t *testing.T) {
	srv, ctrl := newTestServer(t)
	srv.captureTTL = 20 * time.Millisecond
	ctrl.TakePictureFunc = func(s photo.Settings) <-chan photo.Stage {
		ch := make(chan photo.Stage, 2)
		ch <- photo.Stage{RequestID: "req-2", Kind: photo.StageWillBegin, Settings: s}
		ch <- photo.Stage{RequestID: "req-2", Kind: photo.StageDidFinishCapture, Settings: s}
		close(ch)
		return ch
	}

	doJSON(t, srv, http.MethodPost, "/api/capture", CaptureRequest{})
	run := srv.captureByID("req-2")
	if run == nil {
		t.Fatal("capture run not registered")
	}
	waitReplay(t, run, 2)

	for i := 0; i < 400; i++ {
		if srv.captureByID("req-2") == nil {
			return
		}
		sleepShort()
	}
	t.Fatal("finished run still registered past its grace period")
}

func waitReplay(t *testing.T, run *captureRun, want int) {
	t.Helper()
	for i := 0; i < 400; i++ {
		if stages, done := run.replay(); done && len(stages) >= want {
			return
		}
		sleepShort()
	}
	stages, done := run.replay()
	t.Fatalf("replay incomplete: %d stages, done=%v", len(stages), done)
}

func sleepShort() { time.Sleep(5 * time.Millisecond) }
