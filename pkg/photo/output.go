package photo

import (
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-capture/pkg/device"
)

// FrameSource reads raw frames. The session's attached video device is the
// usual source.
type FrameSource interface {
	ReadFrame() (device.Frame, error)
}

// Output is the photo output handle attached to the session. A fresh Output
// is allocated on every (re)configuration.
//
// Each Capture call is an independent run: the native capture callbacks are
// bridged into one buffered event channel keyed by the request ID, completed
// exactly once after the terminal stage.
type Output struct {
	id   string
	pool *Pool

	// LiveClip records a live-photo clip for a request. Nil when the backend
	// cannot record clips; live-photo requests then carry
	// ErrLiveClipUnsupported in their processing stage.
	LiveClip func(requestID string, frame device.Frame) (path string, dur time.Duration, err error)
}

// NewOutput creates a photo output encoding through the given pool.
func NewOutput(pool *Pool) *Output {
	return &Output{
		id:   uuid.New().String(),
		pool: pool,
	}
}

// ID implements session.Output.
func (o *Output) ID() string { return o.id }

// Label implements session.Output.
func (o *Output) Label() string { return "photo output" }

// Capture runs one capture request against the source.
//
// The returned channel delivers the stage sequence in strict order and closes
// immediately after the terminal stage. The buffer is sized past the longest
// possible sequence, so a consumer that stops reading never wedges the run.
func (o *Output) Capture(src FrameSource, settings Settings) <-chan Stage {
	events := make(chan Stage, 32)
	id := uuid.New().String()

	go o.run(id, src, settings, events)
	return events
}

func (o *Output) run(id string, src FrameSource, settings Settings, events chan Stage) {
	defer close(events)

	emit := func(s Stage) {
		s.RequestID = id
		s.Settings = settings
		events <- s
	}

	emit(Stage{Kind: StageWillBegin})
	emit(Stage{Kind: StageWillCapture})

	frame, err := src.ReadFrame()
	if err != nil {
		emit(Stage{Kind: StageDidFinishCapture, Err: err})
		return
	}
	emit(Stage{Kind: StageDidCapture})

	if settings.LivePhoto {
		o.livePhoto(id, frame, emit)
	}

	emit(Stage{
		Kind:    StageDidFinishProcessingPhoto,
		Raw:     &frame,
		Preview: previewOf(frame, previewMaxDim),
	})

	// Buffer-to-bytes conversion happens in the encoder pool, off the session
	// queue. A missing buffer or failed encode rewrites the data stage to
	// carry a typed error; the rest of the metadata is unchanged.
	if len(frame.Data) == 0 {
		emit(Stage{Kind: StageDidFinishProcessingData, Err: ErrNoSampleBuffer})
	} else if data, encErr := o.pool.Encode(frame, settings.Orientation); encErr != nil {
		emit(Stage{Kind: StageDidFinishProcessingData, Err: &EncodeError{RequestID: id, Err: encErr}})
	} else {
		emit(Stage{Kind: StageDidFinishProcessingData, Data: data})
	}

	emit(Stage{Kind: StageDidFinishCapture})
}

func (o *Output) livePhoto(id string, frame device.Frame, emit func(Stage)) {
	if o.LiveClip == nil {
		emit(Stage{Kind: StageDidFinishProcessingLivePhoto, Err: ErrLiveClipUnsupported})
		return
	}
	path, dur, err := o.LiveClip(id, frame)
	emit(Stage{Kind: StageDidFinishRecordingLivePhoto, LivePhotoPath: path})
	emit(Stage{
		Kind:              StageDidFinishProcessingLivePhoto,
		LivePhotoPath:     path,
		LivePhotoDuration: dur,
		Err:               err,
	})
}
