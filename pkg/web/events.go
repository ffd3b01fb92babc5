package web

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/teslashibe/go-capture/pkg/capture"
	"github.com/teslashibe/go-capture/pkg/photo"
)

// Event is one entry on the /ws/events stream.
type Event struct {
	Time string `json:"time"`
	Type string `json:"type"` // running, status, config, error

	Running *bool          `json:"running,omitempty"`
	Status  string         `json:"status,omitempty"`
	Error   string         `json:"error,omitempty"`
	Config  *ConfigSummary `json:"config,omitempty"`
}

// ConfigSummary describes the configured pipeline without exposing handles.
type ConfigSummary struct {
	VideoDevice string `json:"video_device,omitempty"`
	VideoType   string `json:"video_type,omitempty"`
	HasAudio    bool   `json:"has_audio"`
	HasPhoto    bool   `json:"has_photo"`
}

func newEvent(kind string) Event {
	return Event{Time: time.Now().Format(time.RFC3339), Type: kind}
}

func summarize(cfg capture.Config) *ConfigSummary {
	s := &ConfigSummary{
		HasAudio: cfg.AudioInput != nil,
		HasPhoto: cfg.PhotoOutput != nil,
	}
	if cfg.VideoInput != nil {
		info := cfg.VideoInput.Device().Info()
		s.VideoDevice = info.Name
		s.VideoType = string(info.Type)
	}
	return s
}

// StageEvent is one entry on a /ws/captures/:id stream. Encoded photo bytes
// travel base64-encoded in the data stage.
type StageEvent struct {
	CaptureID string `json:"capture_id"`
	Kind      string `json:"kind"`
	Error     string `json:"error,omitempty"`

	Orientation string `json:"orientation,omitempty"`
	Flash       string `json:"flash,omitempty"`

	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	DataBase64 string `json:"data_base64,omitempty"`

	PreviewWidth  int `json:"preview_width,omitempty"`
	PreviewHeight int `json:"preview_height,omitempty"`

	LivePhotoPath     string  `json:"live_photo_path,omitempty"`
	LivePhotoDuration float64 `json:"live_photo_duration,omitempty"`
}

func newStageEvent(id string, s photo.Stage) StageEvent {
	ev := StageEvent{
		CaptureID:   id,
		Kind:        string(s.Kind),
		Orientation: string(s.Settings.Orientation),
		Flash:       string(s.Settings.Flash),
	}
	if s.Err != nil {
		ev.Error = s.Err.Error()
	}
	if s.Raw != nil {
		ev.Width = s.Raw.Width
		ev.Height = s.Raw.Height
	}
	if s.Preview != nil {
		ev.PreviewWidth = s.Preview.Width
		ev.PreviewHeight = s.Preview.Height
	}
	if len(s.Data) > 0 {
		ev.DataBase64 = base64.StdEncoding.EncodeToString(s.Data)
	}
	if s.LivePhotoPath != "" {
		ev.LivePhotoPath = s.LivePhotoPath
		ev.LivePhotoDuration = s.LivePhotoDuration.Seconds()
	}
	return ev
}

// subBuffer holds a full stage sequence. record sends under the run lock; a
// capture emits at most eight stages, so a fresh subscriber channel can never
// fill before the run finishes.
const subBuffer = 16

// captureRun tracks one in-flight (or finished) photo capture. Stages land
// in a replay buffer and fan out to subscribers; the buffer append and the
// subscriber hand-off happen under one lock, so a subscriber sees every stage
// exactly once no matter when it attaches.
type captureRun struct {
	id string

	mu      sync.Mutex
	stages  []StageEvent
	done    bool
	subs    map[int]chan StageEvent
	nextSub int
}

func newCaptureRun(id string) *captureRun {
	return &captureRun{id: id, subs: make(map[int]chan StageEvent)}
}

func (r *captureRun) record(ev StageEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, ev)
	for _, ch := range r.subs {
		ch <- ev
	}
}

func (r *captureRun) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

// subscribe returns the stages recorded so far plus a channel delivering the
// rest. The split is atomic with record. done means the run already finished;
// the channel is then closed and the replay is the whole stream.
func (r *captureRun) subscribe() (past []StageEvent, live <-chan StageEvent, cancel func(), done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	past = make([]StageEvent, len(r.stages))
	copy(past, r.stages)

	ch := make(chan StageEvent, subBuffer)
	if r.done {
		close(ch)
		return past, ch, func() {}, true
	}

	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	cancel = func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(ch)
		}
	}
	return past, ch, cancel, false
}

func (r *captureRun) replay() ([]StageEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageEvent, len(r.stages))
	copy(out, r.stages)
	return out, r.done
}
