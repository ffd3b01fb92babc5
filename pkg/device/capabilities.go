package device

// Backend identifies a device-inventory implementation.
type Backend string

const (
	BackendUVC  Backend = "uvc"
	BackendMock Backend = "mock"
)

// CapabilityTable lists what a backend can express. Resolved once at startup
// and handed to consumers; nothing branches on backend identity per call.
type CapabilityTable struct {
	Backend Backend `json:"backend"`

	// Types the backend can distinguish in its inventory. A selection asking
	// for a type outside this list can only ever match via position fallback.
	Types []Type `json:"types"`

	// Positions the backend can report.
	Positions []Position `json:"positions"`

	// FocusPointOfInterest is true when devices can focus on a point rather
	// than only toggling autofocus.
	FocusPointOfInterest bool `json:"focus_point_of_interest"`

	// SubjectAreaMonitoring is true when devices emit scene-change events.
	SubjectAreaMonitoring bool `json:"subject_area_monitoring"`
}

var capabilityTables = map[Backend]CapabilityTable{
	BackendUVC: {
		Backend:               BackendUVC,
		Types:                 []Type{TypeWideAngle},
		Positions:             []Position{PositionUnspecified},
		FocusPointOfInterest:  false,
		SubjectAreaMonitoring: false,
	},
	BackendMock: {
		Backend:               BackendMock,
		Types:                 []Type{TypeWideAngle, TypeTelephoto, TypeUltraWide, TypeDual},
		Positions:             []Position{PositionBack, PositionFront},
		FocusPointOfInterest:  true,
		SubjectAreaMonitoring: true,
	},
}

// Capabilities returns the capability table for a backend.
// Unknown backends get the UVC table, the most conservative one.
func Capabilities(b Backend) CapabilityTable {
	if t, ok := capabilityTables[b]; ok {
		return t
	}
	return capabilityTables[BackendUVC]
}
