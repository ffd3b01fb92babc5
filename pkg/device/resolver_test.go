package device

import (
	"errors"
	"strings"
	"testing"
)

func backWide() Info {
	return Info{ID: "cam0", Name: "Back Wide", Kind: KindVideo, Type: TypeWideAngle, Position: PositionBack}
}

func frontWide() Info {
	return Info{ID: "cam1", Name: "Front Wide", Kind: KindVideo, Type: TypeWideAngle, Position: PositionFront}
}

func backTele() Info {
	return Info{ID: "cam2", Name: "Back Tele", Kind: KindVideo, Type: TypeTelephoto, Position: PositionBack}
}

func mic() Info {
	return Info{ID: "mic0", Name: "Builtin Mic", Kind: KindAudio}
}

func TestResolve_ExactMatch(t *testing.T) {
	inv := NewStaticInventory(backWide(), frontWide(), backTele())

	got, err := Resolve(inv, Selection{Type: TypeTelephoto, Position: PositionBack})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "cam2" {
		t.Errorf("got %s, want cam2", got.ID)
	}
}

func TestResolve_FallbackToPosition(t *testing.T) {
	// Inventory has only a back wide-angle; asking for a back dual camera
	// must fall back to the position-only match.
	inv := NewStaticInventory(backWide())

	got, err := Resolve(inv, Selection{Type: TypeDual, Position: PositionBack})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Type != TypeWideAngle {
		t.Errorf("fallback type: got %s, want %s", got.Type, TypeWideAngle)
	}
}

func TestResolve_UnspecifiedPositionMatchesAny(t *testing.T) {
	inv := NewStaticInventory(frontWide())

	got, err := Resolve(inv, Selection{Type: TypeWideAngle, Position: PositionUnspecified})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "cam1" {
		t.Errorf("got %s, want cam1", got.ID)
	}
}

func TestResolve_NoMatchNamesInventory(t *testing.T) {
	inv := NewStaticInventory(frontWide(), mic())

	_, err := Resolve(inv, Selection{Type: TypeDual, Position: PositionBack})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var noMatch *NoMatchingDeviceError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchingDeviceError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Front Wide") {
		t.Errorf("error should name searched devices, got: %v", err)
	}
	if strings.Contains(err.Error(), "Builtin Mic") {
		t.Errorf("audio devices should not be in the searched set: %v", err)
	}
}

func TestResolve_EmptyInventory(t *testing.T) {
	inv := NewStaticInventory()

	_, err := Resolve(inv, Selection{Type: TypeWideAngle, Position: PositionBack})
	var noMatch *NoMatchingDeviceError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchingDeviceError, got %v", err)
	}
}

func TestResolveAudio(t *testing.T) {
	inv := NewStaticInventory(backWide(), mic())

	got, err := ResolveAudio(inv)
	if err != nil {
		t.Fatalf("ResolveAudio: %v", err)
	}
	if got.ID != "mic0" {
		t.Errorf("got %s, want mic0", got.ID)
	}
}

func TestResolveAudio_NoAudioDevice(t *testing.T) {
	inv := NewStaticInventory(backWide())

	_, err := ResolveAudio(inv)
	if !errors.Is(err, ErrNoDeviceForCapability) {
		t.Errorf("got %v, want ErrNoDeviceForCapability", err)
	}
}

func TestCapabilities_UnknownBackendIsConservative(t *testing.T) {
	caps := Capabilities(Backend("bogus"))
	if caps.Backend != BackendUVC {
		t.Errorf("unknown backend should fall back to uvc, got %s", caps.Backend)
	}
	if caps.FocusPointOfInterest {
		t.Error("conservative table must not claim focus point of interest")
	}
}
