package photo

import (
	"testing"

	"github.com/teslashibe/go-capture/pkg/device"
)

// gradientFrame fills a BGR buffer with position-derived values so sampling
// points can be checked.
func gradientFrame(w, h int) device.Frame {
	data := make([]byte, w*h*3)
	for i := range data {
		data[i] = byte(i)
	}
	return device.Frame{Data: data, Width: w, Height: h}
}

func TestPreviewOf_DecimatesToBound(t *testing.T) {
	src := gradientFrame(1280, 720)

	p := previewOf(src, 320)
	if p == nil {
		t.Fatal("no preview produced")
	}
	if p.Width != 320 || p.Height != 180 {
		t.Errorf("preview = %dx%d, want 320x180", p.Width, p.Height)
	}
	if len(p.Data) != p.Width*p.Height*3 {
		t.Errorf("preview buffer = %d bytes, want %d", len(p.Data), p.Width*p.Height*3)
	}
	// The first preview pixel is the source's top-left pixel.
	for i := 0; i < 3; i++ {
		if p.Data[i] != src.Data[i] {
			t.Errorf("preview pixel byte %d = %d, want %d", i, p.Data[i], src.Data[i])
		}
	}
}

func TestPreviewOf_SmallFrameCopies(t *testing.T) {
	src := gradientFrame(64, 48)

	p := previewOf(src, 320)
	if p == nil {
		t.Fatal("no preview produced")
	}
	if p.Width != 64 || p.Height != 48 {
		t.Errorf("preview = %dx%d, want the source size", p.Width, p.Height)
	}
	// A copy, not an alias of the source buffer.
	p.Data[0] ^= 0xff
	if src.Data[0] == p.Data[0] {
		t.Error("preview aliases the source buffer")
	}
}

func TestPreviewOf_NoBufferNoPreview(t *testing.T) {
	if p := previewOf(device.Frame{Width: 640, Height: 480}, 320); p != nil {
		t.Errorf("preview from an empty buffer: %+v", p)
	}
	if p := previewOf(device.Frame{}, 320); p != nil {
		t.Errorf("preview from a zero frame: %+v", p)
	}
}

func TestCapture_ProcessingStageCarriesPreview(t *testing.T) {
	out := NewOutput(NewPool(&MockEncoder{}, 1))
	src := &fakeSource{frame: gradientFrame(1280, 720)}

	stages := collect(t, out.Capture(src, DefaultSettings()))

	var processing *Stage
	for i := range stages {
		if stages[i].Kind == StageDidFinishProcessingPhoto {
			processing = &stages[i]
		}
	}
	if processing == nil {
		t.Fatal("no processing stage emitted")
	}
	if processing.Preview == nil {
		t.Fatal("processing stage carries no preview")
	}
	if processing.Preview.Width > previewMaxDim || processing.Preview.Height > previewMaxDim {
		t.Errorf("preview = %dx%d, want both sides within %d",
			processing.Preview.Width, processing.Preview.Height, previewMaxDim)
	}
	if processing.Raw == nil || processing.Preview.Width >= processing.Raw.Width {
		t.Error("preview not smaller than the raw frame")
	}
}
