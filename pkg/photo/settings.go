// Package photo runs photo capture requests against the session's photo
// output, bridging the capture callbacks into one finite, ordered stream of
// stage events per request.
package photo

// Orientation of the captured photo.
type Orientation string

const (
	OrientationPortrait       Orientation = "portrait"
	OrientationPortraitUpside Orientation = "portrait_upside_down"
	OrientationLandscapeLeft  Orientation = "landscape_left"
	OrientationLandscapeRight Orientation = "landscape_right"
)

// FlashMode of the captured photo.
type FlashMode string

const (
	FlashOff  FlashMode = "off"
	FlashOn   FlashMode = "on"
	FlashAuto FlashMode = "auto"
)

// Settings describes one capture request. Immutable per request.
type Settings struct {
	Orientation Orientation `json:"orientation"`
	Flash       FlashMode   `json:"flash"`

	// LivePhoto requests the live-photo stages in addition to the still.
	LivePhoto bool `json:"live_photo"`
}

// DefaultSettings is a portrait still with no flash.
func DefaultSettings() Settings {
	return Settings{
		Orientation: OrientationPortrait,
		Flash:       FlashOff,
	}
}
