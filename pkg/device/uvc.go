package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-capture/internal/log"
)

// UVCInventory enumerates V4L2 capture nodes (/dev/video*) through gocv.
//
// UVC cannot tell a telephoto module from a wide-angle one, so every device
// reports TypeWideAngle and PositionUnspecified; selection falls through to
// the position-only pass (see Capabilities(BackendUVC)).
type UVCInventory struct {
	devGlob string
}

// NewUVCInventory creates an inventory scanning the default /dev/video* nodes.
func NewUVCInventory() *UVCInventory {
	return &UVCInventory{devGlob: "/dev/video*"}
}

// Devices scans the device nodes currently present.
func (u *UVCInventory) Devices() []Info {
	paths, err := filepath.Glob(u.devGlob)
	if err != nil {
		log.Component("uvc").Warn("device scan failed", "err", err)
		return nil
	}
	sort.Strings(paths)

	infos := make([]Info, 0, len(paths))
	for _, p := range paths {
		infos = append(infos, Info{
			ID:       p,
			Name:     fmt.Sprintf("UVC camera %s", strings.TrimPrefix(p, "/dev/")),
			Kind:     KindVideo,
			Type:     TypeWideAngle,
			Position: PositionUnspecified,
		})
	}
	return infos
}

// Open acquires the capture node. V4L2 reports EBUSY through gocv as an open
// failure; that is surfaced as an error, not retried. Permission denials are
// detected before gocv touches the node, because gocv flattens every errno
// into the same opaque open failure.
func (u *UVCInventory) Open(id string) (Device, error) {
	idx, err := nodeIndex(id)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(id, os.O_RDWR, 0)
	if err != nil {
		return nil, classifyNodeError(id, err)
	}
	f.Close()
	vc, err := gocv.OpenVideoCapture(idx)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("device: open %s: node did not open", id)
	}
	return &uvcDevice{
		id: id,
		info: Info{
			ID:       id,
			Name:     fmt.Sprintf("UVC camera %s", strings.TrimPrefix(id, "/dev/")),
			Kind:     KindVideo,
			Type:     TypeWideAngle,
			Position: PositionUnspecified,
		},
		vc:          vc,
		subjectArea: make(chan struct{}),
	}, nil
}

// classifyNodeError sorts a node open failure into the shared taxonomy.
// EACCES on the device node is an access denial, not a transient fault; it
// surfaces as ErrAccessNotGranted and is never retried.
func classifyNodeError(id string, err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("open %s: %w", id, ErrAccessNotGranted)
	}
	return fmt.Errorf("device: open %s: %w", id, err)
}

func nodeIndex(id string) (int, error) {
	digits := strings.TrimLeft(id, "/devvideo")
	idx, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("device: not a video node: %s", id)
	}
	return idx, nil
}

// uvcDevice wraps a gocv VideoCapture as an exclusive device handle.
type uvcDevice struct {
	id   string
	info Info

	mu     sync.Mutex // configuration lock
	vc     *gocv.VideoCapture
	closed bool

	// UVC has no scene-change interrupt; the channel never fires.
	subjectArea chan struct{}
}

func (d *uvcDevice) ID() string { return d.id }
func (d *uvcDevice) Info() Info { return d.info }

func (d *uvcDevice) Lock() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDeviceClosed
	}
	return nil
}

func (d *uvcDevice) Unlock() { d.mu.Unlock() }

func (d *uvcDevice) SupportsFocusPointOfInterest() bool    { return false }
func (d *uvcDevice) SupportsExposurePointOfInterest() bool { return false }

func (d *uvcDevice) SupportsFocusMode(m FocusMode) bool {
	// CAP_PROP_AUTOFOCUS only toggles; there is no one-shot trigger.
	return m == FocusContinuous || m == FocusLocked
}

func (d *uvcDevice) SupportsExposureMode(m ExposureMode) bool {
	return m == ExposureContinuous || m == ExposureLocked
}

func (d *uvcDevice) SetFocus(m FocusMode, _ Point) error {
	if d.vc == nil {
		return ErrDeviceClosed
	}
	switch m {
	case FocusContinuous:
		d.vc.Set(gocv.VideoCaptureAutoFocus, 1)
	case FocusLocked:
		d.vc.Set(gocv.VideoCaptureAutoFocus, 0)
	default:
		return fmt.Errorf("device: focus mode %s not supported on uvc", m)
	}
	return nil
}

func (d *uvcDevice) SetExposure(m ExposureMode, _ Point) error {
	if d.vc == nil {
		return ErrDeviceClosed
	}
	switch m {
	case ExposureContinuous:
		// V4L2 auto-exposure: 3 = aperture priority
		d.vc.Set(gocv.VideoCaptureAutoExposure, 3)
	case ExposureLocked:
		// 1 = manual, current exposure value is kept
		d.vc.Set(gocv.VideoCaptureAutoExposure, 1)
	default:
		return fmt.Errorf("device: exposure mode %s not supported on uvc", m)
	}
	return nil
}

func (d *uvcDevice) SetSubjectAreaMonitoring(bool) error {
	// No-op: UVC delivers no scene-change events.
	return nil
}

func (d *uvcDevice) SubjectAreaChanged() <-chan struct{} { return d.subjectArea }

func (d *uvcDevice) ReadFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Frame{}, ErrDeviceClosed
	}
	mat := gocv.NewMat()
	defer mat.Close()
	if ok := d.vc.Read(&mat); !ok || mat.Empty() {
		return Frame{}, fmt.Errorf("device: read frame from %s failed", d.id)
	}
	return Frame{
		Data:   mat.ToBytes(),
		Width:  mat.Cols(),
		Height: mat.Rows(),
	}, nil
}

func (d *uvcDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.vc.Close()
}
