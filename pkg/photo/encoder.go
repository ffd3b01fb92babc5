package photo

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-capture/pkg/device"
)

// Encoder converts a raw frame into final encoded bytes.
type Encoder interface {
	Encode(f device.Frame, o Orientation) ([]byte, error)
}

// GoCVEncoder encodes BGR frames to JPEG through OpenCV, rotating to the
// requested orientation first. Sensors deliver landscape-native frames.
type GoCVEncoder struct {
	// Quality is the JPEG quality (1-100). Zero means 90.
	Quality int
}

func (e *GoCVEncoder) quality() int {
	if e.Quality == 0 {
		return 90
	}
	return e.Quality
}

// Encode implements Encoder.
func (e *GoCVEncoder) Encode(f device.Frame, o Orientation) ([]byte, error) {
	if len(f.Data) == 0 {
		return nil, ErrNoSampleBuffer
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Data)
	if err != nil {
		return nil, fmt.Errorf("photo: bad frame buffer: %w", err)
	}
	defer mat.Close()

	oriented := mat
	switch o {
	case OrientationPortrait:
		oriented = gocv.NewMat()
		defer oriented.Close()
		gocv.Rotate(mat, &oriented, gocv.Rotate90Clockwise)
	case OrientationPortraitUpside:
		oriented = gocv.NewMat()
		defer oriented.Close()
		gocv.Rotate(mat, &oriented, gocv.Rotate90CounterClockwise)
	case OrientationLandscapeRight:
		oriented = gocv.NewMat()
		defer oriented.Close()
		gocv.Rotate(mat, &oriented, gocv.Rotate180Clockwise)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, oriented,
		[]int{gocv.IMWriteJpegQuality, e.quality()})
	if err != nil {
		return nil, fmt.Errorf("photo: jpeg encode: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Pool bounds concurrent encodes. Encoding is CPU-bound and must never run on
// the session queue; capture goroutines block here instead, leaving hardware
// control responsive.
type Pool struct {
	enc Encoder
	sem chan struct{}
}

// NewPool creates a pool running at most workers encodes at once.
func NewPool(enc Encoder, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		enc: enc,
		sem: make(chan struct{}, workers),
	}
}

// Encode runs one conversion, waiting for a worker slot.
func (p *Pool) Encode(f device.Frame, o Orientation) ([]byte, error) {
	p.sem <- struct{}{}
	defer func() { <-p.sem }()
	return p.enc.Encode(f, o)
}

// MockEncoder implements Encoder for testing.
type MockEncoder struct {
	// EncodeFunc overrides the conversion. If nil, a fake JPEG header plus
	// the frame dimensions is returned.
	EncodeFunc func(f device.Frame, o Orientation) ([]byte, error)
}

// Encode implements Encoder.
func (m *MockEncoder) Encode(f device.Frame, o Orientation) ([]byte, error) {
	if m.EncodeFunc != nil {
		return m.EncodeFunc(f, o)
	}
	if len(f.Data) == 0 {
		return nil, ErrNoSampleBuffer
	}
	return []byte(fmt.Sprintf("jpeg %dx%d %s", f.Width, f.Height, o)), nil
}
