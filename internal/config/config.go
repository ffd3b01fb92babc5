// Package config provides configuration for the capture daemon and its
// commands. Settings come from an optional YAML file with CAPTURE_* env vars
// layered on top, so a container can override any field without a file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-capture/pkg/device"
)

// Default daemon configuration.
const (
	DefaultListenAddr    = ":8090"
	DefaultBackend       = "uvc"
	DefaultLogLevel      = "info"
	DefaultJPEGQuality   = 90
	DefaultEncodeWorkers = 2
)

// Config is the full daemon configuration.
type Config struct {
	// ListenAddr is the HTTP listen address, host:port.
	ListenAddr string `yaml:"listen_addr"`

	// Backend selects the device backend: "uvc" or "mock".
	Backend string `yaml:"backend"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Camera CameraConfig `yaml:"camera"`
	Photo  PhotoConfig  `yaml:"photo"`
}

// CameraConfig is the initial camera selection applied at startup.
type CameraConfig struct {
	// Type is the preferred device type: wide_angle, telephoto, ultra_wide
	// or dual. Empty means wide_angle.
	Type string `yaml:"type"`

	// Position is back, front or empty for any.
	Position string `yaml:"position"`

	// IncludeAudio attaches a microphone input when true.
	IncludeAudio bool `yaml:"include_audio"`
}

// PhotoConfig tunes the photo encode path.
type PhotoConfig struct {
	JPEGQuality   int `yaml:"jpeg_quality"`
	EncodeWorkers int `yaml:"encode_workers"`
}

// Defaults returns the configuration used when no file and no env vars are
// present.
func Defaults() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		Backend:    DefaultBackend,
		LogLevel:   DefaultLogLevel,
		Camera: CameraConfig{
			Type: string(device.TypeWideAngle),
		},
		Photo: PhotoConfig{
			JPEGQuality:   DefaultJPEGQuality,
			EncodeWorkers: DefaultEncodeWorkers,
		},
	}
}

// Load reads the configuration file at path, if it exists, then applies env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// File is optional.
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CAPTURE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CAPTURE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("CAPTURE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CAPTURE_CAMERA_TYPE"); v != "" {
		cfg.Camera.Type = v
	}
	if v := os.Getenv("CAPTURE_CAMERA_POSITION"); v != "" {
		cfg.Camera.Position = v
	}
	if v := os.Getenv("CAPTURE_INCLUDE_AUDIO"); v != "" {
		cfg.Camera.IncludeAudio = v == "true" || v == "1"
	}
	if v := os.Getenv("CAPTURE_JPEG_QUALITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Photo.JPEGQuality = n
		}
	}
	if v := os.Getenv("CAPTURE_ENCODE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Photo.EncodeWorkers = n
		}
	}
}

func (c Config) validate() error {
	switch c.Backend {
	case "uvc", "mock":
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Photo.JPEGQuality < 1 || c.Photo.JPEGQuality > 100 {
		return fmt.Errorf("config: jpeg_quality %d out of range 1..100", c.Photo.JPEGQuality)
	}
	if c.Photo.EncodeWorkers < 1 {
		return fmt.Errorf("config: encode_workers must be at least 1, got %d", c.Photo.EncodeWorkers)
	}
	return nil
}

// Selection converts the camera section into a device selection.
func (c CameraConfig) Selection() device.Selection {
	sel := device.Selection{
		Type:     device.TypeWideAngle,
		Position: device.PositionUnspecified,
	}
	if c.Type != "" {
		sel.Type = device.Type(c.Type)
	}
	switch c.Position {
	case "back":
		sel.Position = device.PositionBack
	case "front":
		sel.Position = device.PositionFront
	}
	return sel
}
