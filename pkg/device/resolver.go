package device

import (
	"fmt"
	"strings"
)

// NoMatchingDeviceError reports a selection policy that matched nothing,
// naming the inventory that was searched.
type NoMatchingDeviceError struct {
	Selection Selection
	Searched  []Info
}

// Error implements the error interface.
func (e *NoMatchingDeviceError) Error() string {
	names := make([]string, 0, len(e.Searched))
	for _, d := range e.Searched {
		names = append(names, d.Name)
	}
	return fmt.Sprintf("device: no device matching type=%s position=%s in [%s]",
		e.Selection.Type, e.Selection.Position, strings.Join(names, ", "))
}

// Resolve picks a video device for the given selection policy.
//
// Matching is two-pass: first by position and type together, then by position
// alone. A selection with PositionUnspecified matches any position. When both
// passes come up empty the error names the searched inventory.
func Resolve(inv Inventory, sel Selection) (Info, error) {
	devices := inv.Devices()
	video := filter(devices, func(d Info) bool { return d.Kind == KindVideo })

	if match, ok := first(video, func(d Info) bool {
		return positionMatches(d, sel) && d.Type == sel.Type
	}); ok {
		return match, nil
	}

	// Fall back to placement alone: a device in the right place beats no
	// device at all.
	if match, ok := first(video, func(d Info) bool { return positionMatches(d, sel) }); ok {
		return match, nil
	}

	return Info{}, &NoMatchingDeviceError{Selection: sel, Searched: video}
}

// ResolveAudio picks the first available audio device.
func ResolveAudio(inv Inventory) (Info, error) {
	if match, ok := first(inv.Devices(), func(d Info) bool { return d.Kind == KindAudio }); ok {
		return match, nil
	}
	return Info{}, ErrNoDeviceForCapability
}

func positionMatches(d Info, sel Selection) bool {
	return sel.Position == PositionUnspecified || d.Position == sel.Position
}

func filter(devices []Info, keep func(Info) bool) []Info {
	out := make([]Info, 0, len(devices))
	for _, d := range devices {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func first(devices []Info, keep func(Info) bool) (Info, bool) {
	for _, d := range devices {
		if keep(d) {
			return d, true
		}
	}
	return Info{}, false
}
