package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teslashibe/go-capture/pkg/device"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("listen addr = %s, want %s", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.Backend != DefaultBackend {
		t.Errorf("backend = %s, want %s", cfg.Backend, DefaultBackend)
	}
	if cfg.Photo.JPEGQuality != DefaultJPEGQuality {
		t.Errorf("jpeg quality = %d, want %d", cfg.Photo.JPEGQuality, DefaultJPEGQuality)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captured.yaml")
	body := `
listen_addr: ":9000"
backend: mock
camera:
  type: telephoto
  position: back
  include_audio: true
photo:
  jpeg_quality: 75
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("listen addr = %s", cfg.ListenAddr)
	}
	if cfg.Backend != "mock" {
		t.Errorf("backend = %s", cfg.Backend)
	}
	if !cfg.Camera.IncludeAudio {
		t.Error("include_audio not applied")
	}
	if cfg.Photo.JPEGQuality != 75 {
		t.Errorf("jpeg quality = %d", cfg.Photo.JPEGQuality)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Photo.EncodeWorkers != DefaultEncodeWorkers {
		t.Errorf("encode workers = %d, want default %d", cfg.Photo.EncodeWorkers, DefaultEncodeWorkers)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captured.yaml")
	if err := os.WriteFile(path, []byte("backend: uvc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CAPTURE_BACKEND", "mock")
	t.Setenv("CAPTURE_LISTEN_ADDR", "127.0.0.1:7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "mock" {
		t.Errorf("backend = %s, want env override", cfg.Backend)
	}
	if cfg.ListenAddr != "127.0.0.1:7777" {
		t.Errorf("listen addr = %s, want env override", cfg.ListenAddr)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captured.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_ValidationRejectsBadValues(t *testing.T) {
	t.Setenv("CAPTURE_BACKEND", "v4l2-nope")
	if _, err := Load(""); err == nil {
		t.Error("unknown backend accepted")
	}
	t.Setenv("CAPTURE_BACKEND", "uvc")

	t.Setenv("CAPTURE_JPEG_QUALITY", "250")
	if _, err := Load(""); err == nil {
		t.Error("out-of-range jpeg quality accepted")
	}
}

func TestCameraConfig_Selection(t *testing.T) {
	sel := CameraConfig{Type: "telephoto", Position: "back"}.Selection()
	if sel.Type != device.TypeTelephoto || sel.Position != device.PositionBack {
		t.Errorf("selection = %+v", sel)
	}

	// Empty camera section falls back to any wide-angle camera.
	sel = CameraConfig{}.Selection()
	if sel.Type != device.TypeWideAngle || sel.Position != device.PositionUnspecified {
		t.Errorf("default selection = %+v", sel)
	}
}
