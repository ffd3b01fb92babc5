package photo

import "github.com/teslashibe/go-capture/pkg/device"

// previewMaxDim bounds the longest side of the preview attached to the
// processing stage.
const previewMaxDim = 320

// previewOf makes a reduced copy of a BGR frame by integer-step decimation,
// so the longest side fits maxDim. Frames without a full pixel buffer yield
// no preview.
func previewOf(f device.Frame, maxDim int) *device.Frame {
	if f.Width <= 0 || f.Height <= 0 || len(f.Data) < f.Width*f.Height*3 {
		return nil
	}
	longest := f.Width
	if f.Height > longest {
		longest = f.Height
	}
	if longest <= maxDim {
		return &device.Frame{
			Data:   append([]byte(nil), f.Data[:f.Width*f.Height*3]...),
			Width:  f.Width,
			Height: f.Height,
		}
	}

	step := (longest + maxDim - 1) / maxDim
	w, h := f.Width/step, f.Height/step
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	data := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := y * step * f.Width
		for x := 0; x < w; x++ {
			i := (row + x*step) * 3
			data = append(data, f.Data[i], f.Data[i+1], f.Data[i+2])
		}
	}
	return &device.Frame{Data: data, Width: w, Height: h}
}
